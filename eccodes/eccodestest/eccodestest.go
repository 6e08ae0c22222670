// Package eccodestest provides a scripted eccodes.Runner for tests.
package eccodestest

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/sdifrance/ecgrib/eccodes"
)

// Script describes how a fake process behaves.
type Script struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// StartErr is returned from Start instead of starting a process.
	StartErr error
}

// Call records one invocation of Runner.Start.
type Call struct {
	Name string
	Args []string
}

// Runner is an eccodes.Runner whose processes replay scripts. It is safe for
// concurrent use.
type Runner struct {
	// Script returns the behavior of the process started for name and args.
	Script func(name string, args []string) Script

	mu    sync.Mutex
	calls []Call
}

// NewRunner returns a Runner that replays s for every invocation.
func NewRunner(s Script) *Runner {
	return &Runner{Script: func(string, []string) Script { return s }}
}

// Start implements eccodes.Runner.
func (r *Runner) Start(ctx context.Context, name string, args ...string) (eccodes.Process, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	r.mu.Unlock()

	s := r.Script(name, args)
	if s.StartErr != nil {
		return nil, s.StartErr
	}
	return &process{
		ctx:    ctx,
		stdout: strings.NewReader(s.Stdout),
		stderr: strings.NewReader(s.Stderr),
		code:   s.ExitCode,
	}, nil
}

// Calls returns the invocations seen so far.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

type process struct {
	ctx    context.Context
	stdout io.Reader
	stderr io.Reader
	code   int
}

func (p *process) Stdout() io.Reader { return p.stdout }
func (p *process) Stderr() io.Reader { return p.stderr }

func (p *process) Wait() (int, error) {
	if p.ctx.Err() != nil {
		// Killed by the context.
		return -1, nil
	}
	return p.code, nil
}
