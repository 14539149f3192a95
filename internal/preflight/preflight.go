// Package preflight verifies that the synthesis tool is available and that
// every job script exists before anything is launched.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sw-qps/hlsrun/internal/model"
	"github.com/sw-qps/hlsrun/internal/parallel"
)

const (
	KindTool   = "tool"
	KindScript = "script"
)

var ErrNoTool = errors.New("no usable tool found")

type Options struct {
	Candidates   []string // tried in preference order
	ProbeArgs    []string
	ProbeTimeout time.Duration
	SkipProbe    bool // only resolve Candidates[0] in PATH, don't run it
	Scripts      []string
}

func FromConfig(cfg model.Config, scripts []string) (Options, error) {
	timeout, err := model.ParseDuration(cfg.Tool.ProbeTimeout)
	if err != nil {
		return Options{}, fmt.Errorf("parsing tool.probe_timeout: %w", err)
	}
	return Options{
		Candidates:   cfg.Tool.Candidates(),
		ProbeArgs:    cfg.Tool.ProbeArgs,
		ProbeTimeout: timeout,
		Scripts:      scripts,
	}, nil
}

// Item is one check: the tool, or a single script.
type Item struct {
	Kind string
	Name string
	OK   bool
	Err  error
}

type Result struct {
	Tool  string // the executable to launch jobs with, empty if none found
	Items []Item
}

func (r Result) OK() bool {
	for _, i := range r.Items {
		if !i.OK {
			return false
		}
	}
	return true
}

// Missing lists the failed checks as "kind: name".
func (r Result) Missing() []string {
	var ret []string
	for _, i := range r.Items {
		if !i.OK {
			ret = append(ret, i.Kind+": "+i.Name)
		}
	}
	return ret
}

// Check runs all checks. It does not stop at the first failure, so the
// operator sees everything that needs fixing at once.
func Check(ctx context.Context, opts Options) Result {
	var ret Result

	tool := findTool(ctx, opts)
	ret.Items = append(ret.Items, tool)
	if tool.OK {
		ret.Tool = tool.Name
	}

	for _, script := range opts.Scripts {
		item := Item{Kind: KindScript, Name: script}
		info, err := os.Stat(script)
		switch {
		case err != nil:
			item.Err = err
		case !info.Mode().IsRegular():
			item.Err = fmt.Errorf("%s: not a regular file", script)
		default:
			item.OK = true
		}
		slog.DebugContext(ctx, "preflight", "kind", item.Kind, "name", item.Name, "ok", item.OK, "error", item.Err)
		ret.Items = append(ret.Items, item)
	}
	return ret
}

func findTool(ctx context.Context, opts Options) Item {
	if len(opts.Candidates) == 0 {
		return Item{Kind: KindTool, Err: fmt.Errorf("%w: no candidates configured", ErrNoTool)}
	}

	if opts.SkipProbe {
		name := opts.Candidates[0]
		_, err := exec.LookPath(name)
		return Item{Kind: KindTool, Name: name, OK: err == nil, Err: err}
	}

	probe := func(ctx context.Context, name string) (struct{}, error) {
		return struct{}{}, Probe(ctx, name, opts.ProbeArgs, opts.ProbeTimeout)
	}
	results := parallel.Map(ctx, len(opts.Candidates), opts.Candidates, probe)

	var errs []error
	for idx, r := range results {
		name := opts.Candidates[idx]
		if r.Err == nil {
			slog.DebugContext(ctx, "preflight: tool found", "tool", name)
			return Item{Kind: KindTool, Name: name, OK: true}
		}
		slog.DebugContext(ctx, "preflight: tool probe failed", "tool", name, "error", r.Err)
		errs = append(errs, fmt.Errorf("%s: %w", name, r.Err))
	}
	return Item{
		Kind: KindTool,
		Name: strings.Join(opts.Candidates, " | "),
		Err:  fmt.Errorf("%w: %w", ErrNoTool, errors.Join(errs...)),
	}
}

// Probe runs name with args and succeeds if it exits 0 within timeout.
func Probe(ctx context.Context, name string, args []string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // G204: candidates come from config
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("probe timed out after %s: %w", timeout, ctx.Err())
		}
		return err
	}
	return nil
}
