package service

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ArtifactKind tells Summarize whether to expect a file or a directory.
type ArtifactKind int

const (
	ArtifactFile ArtifactKind = iota
	ArtifactDir
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactFile:
		return "file"
	case ArtifactDir:
		return "dir"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Artifact is an output a job is expected to produce.
type Artifact struct {
	Path string
	Kind ArtifactKind
}

// JobSpec is the static description of one external job.
type JobSpec struct {
	Name      string
	Path      string   // executable name or path
	Args      []string // arguments, without the executable
	Env       []string // extra KEY=VALUE pairs on top of the supervisor environment
	Dir       string   // working directory
	LogPath   string   // merged stdout and stderr
	Artifacts []Artifact
}

// CommandLine is the command rendered for operator messages.
func (s JobSpec) CommandLine() string {
	return strings.Join(append([]string{s.Path}, s.Args...), " ")
}

// State is the lifecycle state of a job.
type State int

const (
	StatePending State = iota
	StateRunning
	StateCompleted
	StateFailedToLaunch
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailedToLaunch:
		return "failed to launch"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// JobHandle is the runtime record of a launched job. It is owned by the
// goroutine driving the Supervisor and is never reused after completion.
type JobHandle struct {
	Spec    JobSpec
	Started time.Time

	state    State
	proc     Process
	log      io.Closer
	exitCode int
	elapsed  time.Duration
}

func (h *JobHandle) Name() string { return h.Spec.Name }

func (h *JobHandle) State() State { return h.state }

// Pid returns the process identifier, or -1 if the job never started.
func (h *JobHandle) Pid() int {
	if h.proc == nil {
		return -1
	}
	return h.proc.Pid()
}

// ExitCode is valid once the handle is StateCompleted.
func (h *JobHandle) ExitCode() int { return h.exitCode }

// Elapsed is the wall-clock duration between launch and observed exit.
func (h *JobHandle) Elapsed() time.Duration { return h.elapsed }

// closeLog releases the log handle; further calls are no-ops.
func (h *JobHandle) closeLog() error {
	if h.log == nil {
		return nil
	}
	err := h.log.Close()
	h.log = nil
	return err
}
