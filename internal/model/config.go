package model

import (
	"fmt"
	"io"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"

	_ "embed"
)

const (
	LogStderr  = "stderr"
	LogStdout  = "stdout"
	LogDiscard = "discard"
)

//go:embed config.cue
var cueSource []byte

var (
	cueCtx *cue.Context
	schema cue.Value
)

func init() {
	if len(cueSource) == 0 {
		panic("variable cueSource is empty")
	}
	cueCtx = cuecontext.New()
	compiled := cueCtx.CompileBytes(cueSource)
	if compiled.Err() != nil {
		panic(compiled.Err())
	}

	if err := compiled.Validate(); err != nil {
		panic(err)
	}

	schema = compiled.LookupPath(cue.ParsePath("#Config"))
	if schema.Err() != nil {
		panic(schema.Err())
	}
	if err := schema.Validate(); err != nil {
		panic(err)
	}
}

type Config struct {
	Version    int        `json:"version" yaml:"version"` // fixed 0 for now
	Dir        string     `json:"dir,omitempty" yaml:"dir,omitempty"`
	Log        string     `json:"log" yaml:"log"` // "stderr"|"stdout"|"discard"|path
	Verbose    bool       `json:"verbose" yaml:"verbose"`
	Tool       Tool       `json:"tool" yaml:"tool"`
	Jobs       Jobs       `json:"jobs" yaml:"jobs"`
	Supervisor Supervisor `json:"supervisor" yaml:"supervisor"`
}

// Tool describes the external synthesis executable and how to probe it.
type Tool struct {
	Binary       string   `json:"binary" yaml:"binary"`
	Alternatives []string `json:"alternatives" yaml:"alternatives"`
	ProbeArgs    []string `json:"probe_args" yaml:"probe_args"`
	ProbeTimeout string   `json:"probe_timeout" yaml:"probe_timeout"`
	ScriptFlag   string   `json:"script_flag" yaml:"script_flag"`
}

// Candidates returns the binary followed by its alternatives, without duplicates.
func (t Tool) Candidates() []string {
	ret := make([]string, 0, 1+len(t.Alternatives))
	seen := make(map[string]struct{}, cap(ret))
	for _, c := range append([]string{t.Binary}, t.Alternatives...) {
		if _, ok := seen[c]; ok || c == "" {
			continue
		}
		seen[c] = struct{}{}
		ret = append(ret, c)
	}
	return ret
}

// Jobs is the job matrix: every variant crossed with every pattern.
// Path templates accept {job} and {pattern} placeholders.
type Jobs struct {
	Patterns []string `json:"patterns" yaml:"patterns"`
	Variants []string `json:"variants" yaml:"variants"`
	Script   string   `json:"script" yaml:"script"`
	Log      string   `json:"log" yaml:"log"`
	Results  string   `json:"results" yaml:"results"`
	Project  string   `json:"project" yaml:"project"`
}

type Supervisor struct {
	Stagger      string `json:"stagger" yaml:"stagger"`
	PollInterval string `json:"poll_interval" yaml:"poll_interval"`
}

// Durations returns parsed stagger and poll interval.
func (s Supervisor) Durations() (stagger, poll time.Duration, err error) {
	stagger, err = ParseDuration(s.Stagger)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing supervisor.stagger: %w", err)
	}
	poll, err = ParseDuration(s.PollInterval)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing supervisor.poll_interval: %w", err)
	}
	if poll <= 0 {
		return 0, 0, fmt.Errorf("supervisor.poll_interval must be positive, got %s", poll)
	}
	return stagger, poll, nil
}

// LoadConfig validates YAML from r against CUE schema and decodes to Config.
// Omitted fields get the schema defaults.
func LoadConfig(r io.Reader) (Config, error) {
	yamlFile, err := yaml.Extract("hlsrun.yaml", r)
	if err != nil {
		return Config{}, err
	}
	yamlValue := cueCtx.BuildFile(yamlFile)

	unified := schema.Unify(yamlValue)
	if err := unified.Validate(
		cue.All(),          // all constraints
		cue.Concrete(true), // no incomplete values
	); err != nil {
		return Config{}, err
	}

	var out Config
	if err := unified.Decode(&out); err != nil {
		return Config{}, err
	}

	return out, nil
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	cfg, err := LoadConfig(strings.NewReader("version: 0\n"))
	if err != nil {
		panic(fmt.Errorf("default config does not match schema: %w", err))
	}
	return cfg
}
