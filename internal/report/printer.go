// Package report renders supervision progress for the operator. Structured
// diagnostics go to slog; this is the human facing console output.
package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sw-qps/hlsrun/internal/preflight"
	"github.com/sw-qps/hlsrun/internal/service"
)

const ruleWidth = 70

// Printer writes progress lines to w. With statusLine set, the "Running:"
// line is rewritten in place with a carriage return, as on a terminal.
type Printer struct {
	w          io.Writer
	statusLine bool
	pending    bool // a status line without newline was written
	now        func() time.Time
}

var _ service.Observer = (*Printer)(nil)

func New(w io.Writer, statusLine bool) *Printer {
	return &Printer{
		w:          w,
		statusLine: statusLine,
		now:        time.Now,
	}
}

func (p *Printer) printf(format string, args ...any) {
	if p.pending {
		_, _ = fmt.Fprintln(p.w)
		p.pending = false
	}
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) timestamp() string {
	return mutedStyle.Render("[" + p.now().Format("15:04:05") + "]")
}

// Header prints a section title between rules.
func (p *Printer) Header(title string) {
	rule := strings.Repeat("=", ruleWidth)
	p.printf("%s\n%s\n%s\n", rule, headStyle.Render(title), rule)
}

func (p *Printer) Preflight(res preflight.Result) {
	p.printf("Checking environment...\n")
	for _, item := range res.Items {
		switch {
		case item.OK && item.Kind == preflight.KindTool:
			p.printf("%s Found %s\n", passStyle.Render(iconPass), item.Name)
		case item.OK:
			p.printf("%s %s\n", passStyle.Render(iconPass), filepath.Base(item.Name))
		case item.Kind == preflight.KindTool:
			p.printf("%s No HLS tool found (%s)\n", failStyle.Render(iconFail), item.Name)
			p.printf("  Source the Vivado/Vitis settings first, e.g. source <install>/settings64.sh\n")
		default:
			p.printf("%s %s not found\n", failStyle.Render(iconFail), filepath.Base(item.Name))
		}
	}
	if !res.OK() {
		p.printf("\n%s Environment check failed, fix the issues above before running.\n", warnStyle.Render(iconWarn))
	}
	p.printf("\n")
}

// Plan prints what is about to be launched.
func (p *Printer) Plan(dir string, specs []service.JobSpec) {
	p.Header("HLS PARALLEL EXECUTION")
	p.printf("Working directory: %s\n", dir)
	p.printf("Launching %d parallel jobs...\n\n", len(specs))
}

func (p *Printer) Launched(_ context.Context, h *service.JobHandle) {
	p.printf("%s Launching %s\n", p.timestamp(), h.Name())
	p.printf("  Command: %s\n", h.Spec.CommandLine())
	p.printf("  Log: %s\n", h.Spec.LogPath)
	p.printf("  %s Started (PID: %d)\n", passStyle.Render(iconPass), h.Pid())
}

func (p *Printer) LaunchFailed(_ context.Context, f service.LaunchFailure) {
	p.printf("%s Launching %s\n", p.timestamp(), f.Name)
	p.printf("  Command: %s\n", f.Command)
	p.printf("  %s Error: %v\n", failStyle.Render(iconFail), f.Err)
}

func (p *Printer) LaunchResult(r service.LaunchReport) {
	p.printf("\n")
	switch {
	case r.Succeeded == 0:
		p.printf("%s Failed to launch any processes!\n", failStyle.Render(iconFail))
	case r.Succeeded < r.Total:
		p.printf("%s Warning: only %d/%d processes launched\n", warnStyle.Render(iconWarn), r.Succeeded, r.Total)
	default:
		p.printf("%s All %d processes launched successfully\n", passStyle.Render(iconPass), r.Succeeded)
	}
	p.printf("\n")
}

// MonitorStart prints the monitoring banner.
func (p *Printer) MonitorStart() {
	p.Header("MONITORING PROCESSES")
	p.printf("Press Ctrl+C to stop monitoring (processes will continue)\n\n")
}

func (p *Printer) Completed(_ context.Context, c service.Completion) {
	if c.Success {
		p.printf("%s %s %-20s COMPLETED (%s)\n", p.timestamp(), passStyle.Render(iconPass), c.Name, FormatDuration(c.Elapsed))
		return
	}
	p.printf("%s %s %-20s FAILED (exit code: %d, %s)\n", p.timestamp(), failStyle.Render(iconFail), c.Name, c.ExitCode, FormatDuration(c.Elapsed))
}

func (p *Printer) Waiting(_ context.Context, running []string, longest time.Duration) {
	line := fmt.Sprintf("%s Running: %s (longest: %s)", p.timestamp(), strings.Join(running, ", "), FormatDuration(longest))
	if !p.statusLine {
		p.printf("%s\n", line)
		return
	}
	if p.pending {
		// overwrite the previous status line
		_, _ = fmt.Fprint(p.w, "\r\x1b[K"+line)
		return
	}
	_, _ = fmt.Fprint(p.w, line)
	p.pending = true
}

func (p *Printer) Interrupted(_ context.Context, remaining []service.Remaining) {
	p.printf("\n%s Monitoring interrupted by user\n", warnStyle.Render(iconWarn))
	p.printf("  %d process(es) still running in background:\n", len(remaining))
	for _, r := range remaining {
		p.printf("    - %s (PID: %d, running %s)\n", r.Name, r.Pid, FormatDuration(r.Elapsed))
	}
	p.printf("\n  They will continue running. Check log files for progress.\n")
}

func (p *Printer) Summary(s service.Summary) {
	p.printf("\n")
	p.Header("EXECUTION SUMMARY")

	p.printf("\nLog files:\n")
	for _, j := range s.Jobs {
		l := j.Log
		if l.Exists {
			p.printf("  - %-40s (%8.1f KB)\n", filepath.Base(l.Path), float64(l.Size)/1024)
		} else {
			p.printf("  %s %-40s %s\n", failStyle.Render(iconFail), filepath.Base(l.Path), mutedStyle.Render(missingReason(l)))
		}
	}

	p.printf("\nArtifacts:\n")
	seen := make(map[string]struct{})
	for _, j := range s.Jobs {
		for _, a := range j.Artifacts {
			// several jobs may share one artifact, e.g. a per-pattern results file
			if _, ok := seen[a.Path]; ok {
				continue
			}
			seen[a.Path] = struct{}{}
			name := filepath.Base(a.Path)
			if a.Kind == service.ArtifactDir {
				name += "/"
			}
			if a.Exists {
				p.printf("  %s %s\n", passStyle.Render(iconPass), name)
			} else {
				p.printf("  %s %s %s\n", failStyle.Render(iconFail), name, mutedStyle.Render(missingReason(a)))
			}
		}
	}

	p.printf("\nJobs:\n")
	for _, j := range s.Jobs {
		p.printf("  %-24s %s\n", j.Name, stateLabel(j))
	}

	p.printf("\n")
	p.Header("DONE")
}

func missingReason(a service.ArtifactStatus) string {
	if a.Err != nil {
		return "(" + a.Err.Error() + ")"
	}
	return "(not found)"
}

func stateLabel(j service.JobSummary) string {
	switch j.State {
	case service.StateCompleted:
		if j.ExitCode == 0 {
			return passStyle.Render("completed")
		}
		return failStyle.Render(fmt.Sprintf("failed (exit code %d)", j.ExitCode))
	case service.StateFailedToLaunch:
		return failStyle.Render("failed to launch")
	case service.StateRunning:
		return warnStyle.Render("still running")
	default:
		return mutedStyle.Render(j.State.String())
	}
}

// FormatDuration renders seconds below a minute, minutes below an hour and
// hours above.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	switch {
	case secs < 60:
		return fmt.Sprintf("%.0fs", secs)
	case secs < 3600:
		return fmt.Sprintf("%.1fm", secs/60)
	default:
		return fmt.Sprintf("%.1fh", secs/3600)
	}
}
