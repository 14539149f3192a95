package report_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sw-qps/hlsrun/internal/preflight"
	"github.com/sw-qps/hlsrun/internal/report"
	"github.com/sw-qps/hlsrun/internal/service"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	var testCases = []struct {
		given time.Duration
		then  string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{90 * time.Second, "1.5m"},
		{59 * time.Minute, "59.0m"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tt := range testCases {
		require.Equal(t, tt.then, report.FormatDuration(tt.given), tt.given.String())
	}
}

func TestPrinterMonitor(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		p := report.New(&buf, false)
		p.Waiting(ctx, []string{"uniform", "diagonal"}, 90*time.Second)
		p.Completed(ctx, service.Completion{Name: "uniform", ExitCode: 0, Success: true, Elapsed: 3 * time.Second})
		p.Completed(ctx, service.Completion{Name: "diagonal", ExitCode: 3, Elapsed: 2 * time.Hour})
		p.Interrupted(ctx, []service.Remaining{{Name: "log_diagonal", Pid: 4242, Elapsed: time.Minute}})

		out := buf.String()
		require.Contains(t, out, "Running: uniform, diagonal (longest: 1.5m)\n")
		require.Contains(t, out, "✓ uniform")
		require.Contains(t, out, "COMPLETED (3s)")
		require.Contains(t, out, "FAILED (exit code: 3, 2.0h)")
		require.Contains(t, out, "1 process(es) still running in background")
		require.Contains(t, out, "- log_diagonal (PID: 4242, running 1.0m)")
		require.NotContains(t, out, "\r")
	})

	t.Run("status line", func(t *testing.T) {
		var buf bytes.Buffer
		p := report.New(&buf, true)
		p.Waiting(ctx, []string{"a", "b"}, time.Second)
		p.Waiting(ctx, []string{"a", "b"}, 2*time.Second)
		p.Completed(ctx, service.Completion{Name: "a", Success: true})

		out := buf.String()
		require.Equal(t, 1, strings.Count(out, "\r"))
		require.Contains(t, out, "(longest: 2s)\n")
		require.True(t, strings.HasSuffix(strings.TrimSpace(out), "COMPLETED (0s)"))
	})
}

func TestPrinterSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := report.New(&buf, false)

	results := service.ArtifactStatus{Artifact: service.Artifact{Path: "/w/sw_qps_uniform_results.csv"}, Exists: true}
	p.Summary(service.Summary{Jobs: []service.JobSummary{
		{
			Name:      "uniform",
			State:     service.StateCompleted,
			Log:       service.ArtifactStatus{Artifact: service.Artifact{Path: "/w/hls_uniform.log"}, Exists: true, Size: 2048},
			Artifacts: []service.ArtifactStatus{results},
		},
		{
			Name:      "uniform_aggressive",
			State:     service.StateFailedToLaunch,
			ExitCode:  -1,
			Log:       service.ArtifactStatus{Artifact: service.Artifact{Path: "/w/hls_uniform_aggressive.log"}, Exists: true},
			Artifacts: []service.ArtifactStatus{results, {Artifact: service.Artifact{Path: "/w/sw_qps_project_uniform_aggressive", Kind: service.ArtifactDir}}},
		},
	}})

	out := buf.String()
	require.Contains(t, out, "EXECUTION SUMMARY")
	require.Contains(t, out, "hls_uniform.log")
	require.Contains(t, out, "2.0 KB")
	require.Equal(t, 1, strings.Count(out, "sw_qps_uniform_results.csv"))
	require.Contains(t, out, "✗ sw_qps_project_uniform_aggressive/ (not found)")
	require.Contains(t, out, "failed to launch")
}

func TestPrinterPreflight(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p := report.New(&buf, false)
	p.Preflight(preflight.Result{Items: []preflight.Item{
		{Kind: preflight.KindTool, Name: "vitis_hls | vivado_hls", Err: errors.New("nope")},
		{Kind: preflight.KindScript, Name: "/w/run_sw_qps_uniform.tcl", OK: true},
		{Kind: preflight.KindScript, Name: "/w/run_sw_qps_diagonal.tcl", Err: errors.New("missing")},
	}})
	out := buf.String()
	require.Contains(t, out, "✗ No HLS tool found (vitis_hls | vivado_hls)")
	require.Contains(t, out, "✓ run_sw_qps_uniform.tcl")
	require.Contains(t, out, "✗ run_sw_qps_diagonal.tcl not found")
	require.Contains(t, out, "Environment check failed")
}
