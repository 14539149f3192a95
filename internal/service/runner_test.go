package service_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/sw-qps/hlsrun/internal/service"
	"github.com/stretchr/testify/require"
)

func TestRunner(t *testing.T) {
	t.Parallel()
	sh := lookPath(t, "sh")
	dir := t.TempDir()

	logPath := filepath.Join(dir, "job.log")
	out, err := os.Create(logPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = out.Close() })

	spec := service.JobSpec{
		Name: "pwd",
		Path: sh,
		Args: []string{"-c", `pwd; echo "to stderr $HLSRUN_TEST" 1>&2; sleep 0.1; exit 7`},
		Env:  []string{"HLSRUN_TEST=golang"},
		Dir:  dir,
	}
	runner, err := service.StartRunner(spec, out)
	require.NoError(t, err)
	require.Positive(t, runner.Pid())

	_, exited := runner.Poll()
	require.False(t, exited)

	select {
	case <-runner.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("process did not exit")
	}
	code, exited := runner.Poll()
	require.True(t, exited)
	require.Equal(t, 7, code)
	var exitErr *exec.ExitError
	require.ErrorAs(t, runner.Err(), &exitErr)

	require.NoError(t, out.Close())
	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(b), filepath.Base(dir)+"\n")
	require.Contains(t, string(b), "to stderr golang\n")
}

func TestRunner_ExecError(t *testing.T) {
	t.Parallel()
	noCmd := service.JobSpec{
		Name: "missing",
		Path: "hlsrun-does-not-exist",
	}
	_, err := service.StartRunner(noCmd, &bytes.Buffer{})
	require.Error(t, err)
	var execErr *exec.Error
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, noCmd.Path, execErr.Name)
	require.ErrorIs(t, execErr.Err, exec.ErrNotFound)
}

func TestRunner_Buffer(t *testing.T) {
	t.Parallel()
	sh := lookPath(t, "sh")
	var buf bytes.Buffer
	runner, err := service.StartRunner(service.JobSpec{Path: sh, Args: []string{"-c", "echo stdout"}}, &buf)
	require.NoError(t, err)
	<-runner.Done()
	code, exited := runner.Poll()
	require.True(t, exited)
	require.Zero(t, code)
	require.Equal(t, "stdout\n", buf.String())
}
