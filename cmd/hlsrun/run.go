package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sw-qps/hlsrun/internal/lock"
	"github.com/sw-qps/hlsrun/internal/log"
	"github.com/sw-qps/hlsrun/internal/model"
	"github.com/sw-qps/hlsrun/internal/preflight"
	"github.com/sw-qps/hlsrun/internal/report"
	"github.com/sw-qps/hlsrun/internal/service"
)

var (
	ErrPreflight      = errors.New("environment check failed")
	ErrNoJobsLaunched = errors.New("no job could be launched")
)

// runner is one supervised run over a work dir.
type runner struct {
	config    model.Config
	dir       string
	out       io.Writer
	skipProbe bool
}

// run checks the environment, launches the job matrix, waits for it and
// prints the summary. Failed jobs and an interrupted monitor are not errors.
func (r runner) run(ctx context.Context) error {
	supervisor, err := service.SupervisorFromConfig(r.config.Supervisor)
	if err != nil {
		return err
	}

	f, isFile := r.out.(*os.File)
	if isFile {
		report.SetupColor(f)
	}
	printer := report.New(r.out, isFile && report.IsTerminal(f))

	attrs := slog.Group("hlsrun",
		slog.String("cmd", "run"),
		slog.Int("pid", os.Getpid()),
		slog.String("dir", r.dir),
	)
	ctx = log.ContextAttrs(ctx, attrs)

	opts, err := preflight.FromConfig(r.config, service.Scripts(r.config, r.dir))
	if err != nil {
		return err
	}
	opts.SkipProbe = r.skipProbe
	checked := preflight.Check(ctx, opts)
	printer.Preflight(checked)
	if !checked.OK() {
		return fmt.Errorf("%w: %s", ErrPreflight, strings.Join(checked.Missing(), ", "))
	}

	dirLock, err := lock.Acquire(ctx, r.dir, 0)
	if err != nil {
		return err
	}
	defer func() {
		if err := dirLock.Release(); err != nil {
			slog.WarnContext(ctx, "releasing work dir lock", "path", dirLock.Path(), "error", err)
		}
	}()

	sess, err := service.NewSession(service.JobsFromConfig(r.config, r.dir, checked.Tool))
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.WarnContext(ctx, "closing job logs", "error", err)
		}
	}()
	ctx = log.ContextAttrs(ctx, slog.String("session_id", sess.ID.String()))
	slog.InfoContext(ctx, "session started", "tool", checked.Tool, "jobs", len(sess.Specs()))

	supervisor = supervisor.WithObserver(printer)
	printer.Plan(r.dir, sess.Specs())
	launched := supervisor.LaunchAll(ctx, sess)
	printer.LaunchResult(launched)
	if launched.Succeeded == 0 {
		return fmt.Errorf("%w: %d attempted", ErrNoJobsLaunched, launched.Total)
	}

	printer.MonitorStart()
	monitored := supervisor.Monitor(ctx, sess)
	if monitored.Interrupted {
		slog.WarnContext(ctx, "run interrupted", "remaining", len(monitored.Remaining))
	}

	summary := supervisor.Summarize(ctx, sess)
	printer.Summary(summary)
	slog.InfoContext(ctx, "session finished",
		"succeeded", sess.Succeeded(),
		"failed", sess.Failed()+launched.Failed,
		"missing_artifacts", summary.Missing(),
	)
	return nil
}
