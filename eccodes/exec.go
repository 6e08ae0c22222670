package eccodes

import (
	"context"
	"io"
	"io/fs"
	"os/exec"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultWaitDelay is how long the pipes of a killed process are left open
// before they are closed.
const DefaultWaitDelay = 2 * time.Second

// ExecRunner starts processes with os/exec. The process is killed when the
// context passed to Start is done. WaitDelay after that its pipes are closed,
// even if a descendant of the process still holds them, so readers return.
type ExecRunner struct {
	// WaitDelay defaults to DefaultWaitDelay.
	WaitDelay time.Duration
}

// Start implements Runner.
func (r ExecRunner) Start(ctx context.Context, name string, args ...string) (Process, error) {
	delay := r.WaitDelay
	if delay <= 0 {
		delay = DefaultWaitDelay
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = delay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to spawn %s", name)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to spawn %s", name)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingToolError{Tool: name, Err: err}
		}
		return nil, errors.Wrapf(err, "failed to spawn %s", name)
	}

	p := &execProcess{cmd: cmd, stdout: stdout, stderr: stderr, done: make(chan struct{})}
	p.stopWatch = context.AfterFunc(ctx, func() {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			p.closePipes()
		case <-p.done:
		}
	})
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	stopWatch func() bool
	done      chan struct{}
	closeOnce sync.Once
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

// closePipes unblocks pending reads on both pipes.
func (p *execProcess) closePipes() {
	p.closeOnce.Do(func() {
		_ = p.stdout.Close()
		_ = p.stderr.Close()
	})
}

func (p *execProcess) Wait() (int, error) {
	p.stopWatch()
	close(p.done)

	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}
