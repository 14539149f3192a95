package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/sw-qps/hlsrun/internal/model"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	yml := `
version: 0
log: discard
verbose: true
tool:
  binary: vivado_hls
  alternatives: []
jobs:
  patterns:
    - uniform
    - diagonal
  variants:
    - ""
supervisor:
  stagger: 0s
  poll_interval: PT2S
`
	cfg, err := model.LoadConfig(strings.NewReader(yml))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, model.LogDiscard, cfg.Log)
	require.True(t, cfg.Verbose)
	require.Equal(t, []string{"vivado_hls"}, cfg.Tool.Candidates())
	require.Equal(t, []string{"uniform", "diagonal"}, cfg.Jobs.Patterns)
	require.Equal(t, []string{""}, cfg.Jobs.Variants)
	// untouched fields keep defaults
	require.Equal(t, "-f", cfg.Tool.ScriptFlag)
	require.Equal(t, "hls_{job}.log", cfg.Jobs.Log)

	stagger, poll, err := cfg.Supervisor.Durations()
	require.NoError(t, err)
	require.Zero(t, stagger)
	require.Equal(t, 2*time.Second, poll)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := model.DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, model.LogStderr, cfg.Log)
	require.False(t, cfg.Verbose)
	require.Equal(t, []string{"vitis_hls", "vivado_hls"}, cfg.Tool.Candidates())
	require.Equal(t, []string{"-version"}, cfg.Tool.ProbeArgs)
	require.Equal(t, []string{"uniform", "diagonal", "quasi_diagonal", "log_diagonal"}, cfg.Jobs.Patterns)
	require.Equal(t, []string{"", "_aggressive"}, cfg.Jobs.Variants)
	require.Equal(t, "sw_qps_{pattern}_results.csv", cfg.Jobs.Results)

	stagger, poll, err := cfg.Supervisor.Durations()
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, stagger)
	require.Equal(t, 10*time.Second, poll)
}

func TestLoadConfig_Fail(t *testing.T) {
	t.Parallel()
	var testCases = []struct {
		scenario string
		given    string
		then     string
	}{
		{"unknown field", "version: 0\nfoo: bar\n", "foo"},
		{"empty patterns", "jobs:\n  patterns: []\n", "jobs.patterns"},
		{"bad duration", "supervisor:\n  poll_interval: soon\n", "supervisor.poll_interval"},
		{"wrong version", "version: 1\n", "version"},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			_, err := model.LoadConfig(strings.NewReader(tt.given))
			require.Error(t, err)
			details := model.ConfigErrors(err)
			require.NotEmpty(t, details)
			var paths []string
			for _, d := range details {
				paths = append(paths, d.Path)
			}
			require.Contains(t, paths, tt.then)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	cfg := model.DefaultConfig()
	cfg.Jobs.Patterns = []string{"uniform", "uniform"}
	require.ErrorIs(t, cfg.Validate(), model.ErrDuplicateMatrix)

	cfg = model.DefaultConfig()
	cfg.Version = 3
	require.ErrorIs(t, cfg.Validate(), model.ErrUnsupportedVersion)

	cfg = model.DefaultConfig()
	cfg.Supervisor.PollInterval = "0s"
	require.Error(t, cfg.Validate())
}

func TestExpand(t *testing.T) {
	t.Parallel()
	name := model.JobName("diagonal", "_aggressive")
	require.Equal(t, "diagonal_aggressive", name)
	require.Equal(t, "run_sw_qps_diagonal_aggressive.tcl", model.Expand("run_sw_qps_{job}.tcl", name, "diagonal"))
	require.Equal(t, "sw_qps_diagonal_results.csv", model.Expand("sw_qps_{pattern}_results.csv", name, "diagonal"))
	require.Equal(t, "static.log", model.Expand("static.log", name, "diagonal"))
}
