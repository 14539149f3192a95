package service

import (
	"io"
	"os"
	"os/exec"
)

// Process is the narrow view of a launched child the supervisor relies on.
type Process interface {
	// Poll reports the exit code once the process has terminated. It never blocks.
	Poll() (exitCode int, exited bool)
	// Pid is the operating system identifier of the process.
	Pid() int
}

// StartFunc launches spec with stdout and stderr redirected to out.
type StartFunc func(spec JobSpec, out io.Writer) (Process, error)

// Runner is the os/exec implementation of Process. The child is started in
// its own process group so that an interrupt delivered to the supervisor's
// terminal does not reach it.
type Runner struct {
	cmd   *exec.Cmd
	done  chan struct{}
	state *os.ProcessState
	err   error
}

var _ Process = (*Runner)(nil)

// Start runs the underlying process and returns without waiting for it. A
// single goroutine reaps the child and publishes its exit state.
func Start(spec JobSpec, out io.Writer) (Process, error) {
	return StartRunner(spec, out)
}

// StartRunner is Start returning the concrete type.
func StartRunner(spec JobSpec, out io.Writer) (*Runner, error) {
	cmd := exec.Command(spec.Path, spec.Args...) //nolint:gosec // G204: command comes from the job matrix
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.Stdout = out
	cmd.Stderr = out
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	r := &Runner{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go r.wait()
	return r, nil
}

func (r *Runner) wait() {
	err := r.cmd.Wait()
	r.state = r.cmd.ProcessState
	r.err = err
	close(r.done)
}

func (r *Runner) Poll() (int, bool) {
	select {
	case <-r.done:
	default:
		return -1, false
	}
	if r.state == nil {
		return -1, true
	}
	return r.state.ExitCode(), true
}

func (r *Runner) Pid() int {
	return r.cmd.Process.Pid
}

// Done is closed once the process has been reaped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Err is the error returned by Wait, valid after Done is closed. A non-zero
// exit code is reported as *exec.ExitError.
func (r *Runner) Err() error {
	<-r.done
	return r.err
}
