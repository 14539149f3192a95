package service

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrEmptyJobName = errors.New("job name is empty")
	ErrDuplicateJob = errors.New("duplicate job name")
)

// Session is the state of one supervision run: launch, monitor, summarize.
// It is not safe for concurrent use; independent sessions are.
type Session struct {
	ID uuid.UUID

	specs    []JobSpec
	handles  map[string]*JobHandle
	active   []*JobHandle
	failures map[string]error

	launched  bool
	succeeded int
	failed    int
}

// NewSession validates specs and returns a session ready for LaunchAll.
func NewSession(specs []JobSpec) (*Session, error) {
	seen := make(map[string]struct{}, len(specs))
	for idx, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: spec #%d", ErrEmptyJobName, idx)
		}
		if _, ok := seen[spec.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateJob, spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}

	return &Session{
		ID:       uuid.New(),
		specs:    slices.Clone(specs),
		handles:  make(map[string]*JobHandle, len(specs)),
		failures: make(map[string]error),
	}, nil
}

// Specs returns the jobs in launch order.
func (s *Session) Specs() []JobSpec {
	return slices.Clone(s.specs)
}

// Handle returns the handle of a job which reached StateRunning.
func (s *Session) Handle(name string) (*JobHandle, bool) {
	h, ok := s.handles[name]
	return h, ok
}

// State returns the current state of a named job.
func (s *Session) State(name string) State {
	if h, ok := s.handles[name]; ok {
		return h.state
	}
	if _, ok := s.failures[name]; ok {
		return StateFailedToLaunch
	}
	return StatePending
}

// LaunchError returns the error recorded for a job which failed to launch.
func (s *Session) LaunchError(name string) error {
	return s.failures[name]
}

// Active returns the names of jobs still running, in launch order.
func (s *Session) Active() []string {
	ret := make([]string, 0, len(s.active))
	for _, h := range s.active {
		ret = append(ret, h.Name())
	}
	return ret
}

// Succeeded and Failed count completed jobs by exit code.
func (s *Session) Succeeded() int { return s.succeeded }
func (s *Session) Failed() int    { return s.failed }

// Close releases log handles of jobs still active. The processes themselves
// are left running. Close is idempotent.
func (s *Session) Close() error {
	var errs []error
	for _, h := range s.active {
		if err := h.closeLog(); err != nil {
			errs = append(errs, fmt.Errorf("closing log of %s: %w", h.Name(), err))
		}
	}
	return errors.Join(errs...)
}
