package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sw-qps/hlsrun/internal/log"
	"github.com/sw-qps/hlsrun/internal/model"
)

// LogOpener creates or truncates a job log.
type LogOpener func(path string) (io.WriteCloser, error)

func createLog(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// Observer receives supervision events as they happen. Calls are made from
// the goroutine running LaunchAll or Monitor.
type Observer interface {
	Launched(ctx context.Context, h *JobHandle)
	LaunchFailed(ctx context.Context, f LaunchFailure)
	Completed(ctx context.Context, c Completion)
	Waiting(ctx context.Context, running []string, longest time.Duration)
	Interrupted(ctx context.Context, remaining []Remaining)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) Launched(context.Context, *JobHandle) {}
func (NopObserver) LaunchFailed(context.Context, LaunchFailure) {}
func (NopObserver) Completed(context.Context, Completion) {}
func (NopObserver) Waiting(context.Context, []string, time.Duration) {}
func (NopObserver) Interrupted(context.Context, []Remaining) {}

type LaunchFailure struct {
	Name    string
	Command string
	Err     error
}

type LaunchReport struct {
	Total     int
	Succeeded int
	Failed    int
	Launched  []*JobHandle
	Failures  []LaunchFailure
}

type Completion struct {
	Name     string
	Pid      int
	ExitCode int
	Elapsed  time.Duration
	Success  bool
}

// Remaining is a job left running when Monitor was interrupted.
type Remaining struct {
	Name    string
	Pid     int
	Elapsed time.Duration
}

type MonitorReport struct {
	Completions []Completion
	Interrupted bool
	Remaining   []Remaining
}

type Supervisor struct {
	stagger  time.Duration
	interval time.Duration
	observer Observer
	openLog  LogOpener
	start    StartFunc
	now      func() time.Time
}

// NewSupervisor returns a supervisor waiting stagger between launches and
// interval between sweeps.
func NewSupervisor(stagger, interval time.Duration) *Supervisor {
	return &Supervisor{
		stagger:  stagger,
		interval: interval,
		observer: NopObserver{},
		openLog:  createLog,
		start:    Start,
		now:      time.Now,
	}
}

func SupervisorFromConfig(cfg model.Supervisor) (*Supervisor, error) {
	stagger, interval, err := cfg.Durations()
	if err != nil {
		return nil, err
	}
	return NewSupervisor(stagger, interval), nil
}

func (s *Supervisor) WithObserver(o Observer) *Supervisor {
	if o == nil {
		o = NopObserver{}
	}
	s.observer = o
	return s
}

// WithLogOpener replaces os.Create for job logs.
// This method exists for a unit testing only.
func (s *Supervisor) WithLogOpener(fn LogOpener) *Supervisor {
	s.openLog = fn
	return s
}

// WithStarter replaces the os/exec process starter.
// This method exists for a unit testing only.
func (s *Supervisor) WithStarter(fn StartFunc) *Supervisor {
	s.start = fn
	return s
}

// LaunchAll starts every spec of the session in order. It always attempts
// each spec exactly once and returns normally even if nothing started; a
// canceled ctx only skips the remaining stagger delays.
func (s *Supervisor) LaunchAll(ctx context.Context, sess *Session) LaunchReport {
	if sess.launched {
		slog.WarnContext(ctx, "session already launched: ignoring")
		return LaunchReport{}
	}
	sess.launched = true

	report := LaunchReport{Total: len(sess.specs)}
	for idx, spec := range sess.specs {
		if idx > 0 && s.stagger > 0 && ctx.Err() == nil {
			_ = s.sleep(ctx, s.stagger)
		}

		jctx := log.ContextAttrs(ctx, slog.String("job_name", spec.Name))
		h, err := s.launch(jctx, spec)
		if err != nil {
			f := LaunchFailure{Name: spec.Name, Command: spec.CommandLine(), Err: err}
			sess.failures[spec.Name] = err
			report.Failed++
			report.Failures = append(report.Failures, f)
			slog.ErrorContext(jctx, "job failed to launch", "command", f.Command, "error", err)
			s.observer.LaunchFailed(jctx, f)
			continue
		}

		sess.handles[spec.Name] = h
		sess.active = append(sess.active, h)
		report.Succeeded++
		report.Launched = append(report.Launched, h)
		slog.InfoContext(jctx, "job launched", "pid", h.Pid(), "command", spec.CommandLine(), "log", spec.LogPath)
		s.observer.Launched(jctx, h)
	}
	return report
}

func (s *Supervisor) launch(ctx context.Context, spec JobSpec) (*JobHandle, error) {
	out, err := s.openLog(spec.LogPath)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", spec.LogPath, err)
	}

	proc, err := s.start(spec, out)
	if err != nil {
		if cerr := out.Close(); cerr != nil {
			slog.WarnContext(ctx, "closing log after launch failure", "log", spec.LogPath, "error", cerr)
		}
		return nil, fmt.Errorf("starting %s: %w", spec.CommandLine(), err)
	}

	return &JobHandle{
		Spec:    spec,
		Started: s.now(),
		state:   StateRunning,
		proc:    proc,
		log:     out,
	}, nil
}

// Monitor blocks until every active job has terminated or ctx is canceled.
// Completions are reported to the Observer as soon as a sweep observes them.
// On cancellation the remaining jobs keep running and are listed in the
// report together with their process identifiers.
func (s *Supervisor) Monitor(ctx context.Context, sess *Session) MonitorReport {
	var report MonitorReport
	for len(sess.active) > 0 {
		if ctx.Err() != nil {
			return s.interrupted(ctx, sess, report)
		}

		report.Completions = append(report.Completions, s.sweep(ctx, sess)...)
		if len(sess.active) == 0 {
			break
		}

		s.observer.Waiting(ctx, sess.Active(), s.longest(sess))
		if !s.sleep(ctx, s.interval) {
			return s.interrupted(ctx, sess, report)
		}
	}
	slog.DebugContext(ctx, "all jobs completed", "succeeded", sess.succeeded, "failed", sess.failed)
	return report
}

func (s *Supervisor) sweep(ctx context.Context, sess *Session) []Completion {
	var done []Completion
	still := make([]*JobHandle, 0, len(sess.active))
	for _, h := range sess.active {
		code, exited := h.proc.Poll()
		if !exited {
			still = append(still, h)
			continue
		}

		h.state = StateCompleted
		h.exitCode = code
		h.elapsed = s.now().Sub(h.Started)

		jctx := log.ContextAttrs(ctx, slog.String("job_name", h.Name()))
		if err := h.closeLog(); err != nil {
			slog.WarnContext(jctx, "closing job log", "log", h.Spec.LogPath, "error", err)
		}

		c := Completion{
			Name:     h.Name(),
			Pid:      h.Pid(),
			ExitCode: code,
			Elapsed:  h.elapsed,
			Success:  code == 0,
		}
		if c.Success {
			sess.succeeded++
			slog.InfoContext(jctx, "job completed", "elapsed", c.Elapsed.String())
		} else {
			sess.failed++
			slog.ErrorContext(jctx, "job failed", "exit_code", code, "elapsed", c.Elapsed.String(), "log", h.Spec.LogPath)
		}
		done = append(done, c)
		s.observer.Completed(jctx, c)
	}
	sess.active = still
	return done
}

func (s *Supervisor) interrupted(ctx context.Context, sess *Session, report MonitorReport) MonitorReport {
	now := s.now()
	report.Interrupted = true
	report.Remaining = make([]Remaining, 0, len(sess.active))
	for _, h := range sess.active {
		report.Remaining = append(report.Remaining, Remaining{
			Name:    h.Name(),
			Pid:     h.Pid(),
			Elapsed: now.Sub(h.Started),
		})
	}
	slog.WarnContext(ctx, "monitoring interrupted: jobs left running", "remaining", len(report.Remaining))
	s.observer.Interrupted(ctx, report.Remaining)
	return report
}

func (s *Supervisor) longest(sess *Session) time.Duration {
	now := s.now()
	var ret time.Duration
	for _, h := range sess.active {
		ret = max(ret, now.Sub(h.Started))
	}
	return ret
}

// sleep is the only suspension point of the supervisor. It returns false
// when ctx ended first.
func (s *Supervisor) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
