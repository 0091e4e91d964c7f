package invoker

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/voicetyped/readaloud/internal/speech/engine"
)

// ExitStatus is what a finished engine process left behind.
type ExitStatus struct {
	Code   int
	Stdout []byte
	Stderr []byte
}

// Process is a started engine process.
type Process interface {
	// Wait blocks until the process exits. A non-zero exit is reported in
	// ExitStatus, not as an error.
	Wait() (ExitStatus, error)
}

// CommandRunner starts engine processes.
type CommandRunner interface {
	Start(ctx context.Context, cmd engine.Command) (Process, error)
}

// ExecRunner runs commands as real child processes with stdin closed and
// stdout and stderr captured. On Windows the child gets no console window.
type ExecRunner struct {
	// WaitDelay bounds how long Wait lingers after the context is cancelled
	// or the child exits with its output still held open by a grandchild.
	// Zero means defaultWaitDelay.
	WaitDelay time.Duration
}

const defaultWaitDelay = 2 * time.Second

func (r ExecRunner) Start(ctx context.Context, cmd engine.Command) (Process, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Stdin = nil
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = r.WaitDelay
	if c.WaitDelay <= 0 {
		c.WaitDelay = defaultWaitDelay
	}
	hideWindow(c)

	if err := c.Start(); err != nil {
		return nil, err
	}
	return &execProcess{ctx: ctx, cmd: c, stdout: stdout, stderr: stderr}, nil
}

type execProcess struct {
	ctx    context.Context
	cmd    *exec.Cmd
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func (p *execProcess) Wait() (ExitStatus, error) {
	err := p.cmd.Wait()
	status := ExitStatus{Stdout: p.stdout.Bytes(), Stderr: p.stderr.Bytes()}
	if err == nil {
		return status, nil
	}

	// A killed child looks like an exit error; report why it was killed.
	if ctxErr := p.ctx.Err(); ctxErr != nil {
		status.Code = -1
		return status, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status.Code = exitErr.ExitCode()
		return status, nil
	}

	// The engine itself exited; only a detached grandchild kept the output
	// pipes open past WaitDelay. Its exit status is the answer.
	if errors.Is(err, exec.ErrWaitDelay) && p.cmd.ProcessState != nil {
		status.Code = p.cmd.ProcessState.ExitCode()
		return status, nil
	}
	return status, err
}
