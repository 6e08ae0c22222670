// Package eccodes runs the ecCodes command line tools and collects their
// output.
//
// The tools are treated as black boxes: a process is started with a list of
// arguments, its standard output is handed to a consumer as it is produced
// and its standard error is collected concurrently so that neither pipe can
// fill up and block the child. The Runner interface is the seam used to
// substitute a scripted process in tests.
package eccodes

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Commands used for launching the ecCodes tools. On each invocation these are
// looked up in the system path.
var (
	DumpCommand = "grib_dump"
	GetCommand  = "grib_get"
)

// Runner starts external processes.
type Runner interface {
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a started external process. Stdout and Stderr must both be read
// to EOF before Wait is called.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait waits for the process to exit and returns its exit code. The error
	// is non-nil only if waiting itself failed; a non-zero exit is reported
	// through the code alone.
	Wait() (int, error)
}

// Stream runs name with args and passes its standard output to consume. It
// returns once the process has exited. A non-zero exit, a wait failure or an
// expired context is reported as a *ProcessError carrying the process's
// standard error, and takes precedence over an error from consume.
func Stream(ctx context.Context, r Runner, name string, args []string, consume func(io.Reader) error) error {
	glog.V(1).Infof("running %s %s", name, strings.Join(args, " "))

	p, err := r.Start(ctx, name, args...)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	stderrDone := make(chan error, 1)
	go func() {
		_, err := io.Copy(&stderr, p.Stderr())
		stderrDone <- err
	}()

	consumeErr := consume(p.Stdout())
	if consumeErr != nil {
		// The child blocks on a full pipe unless stdout is drained.
		_, _ = io.Copy(io.Discard, p.Stdout())
	}
	if err := <-stderrDone; err != nil {
		glog.Warningf("error reading %s standard error: %v", name, err)
	}

	code, waitErr := p.Wait()
	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if code != 0 || waitErr != nil {
		return &ProcessError{Tool: name, ExitCode: code, Stderr: stderr.String(), Err: waitErr}
	}
	if consumeErr != nil {
		return errors.Wrapf(consumeErr, "error processing %s output", name)
	}
	glog.V(1).Infof("%s exited successfully", name)
	return nil
}

// Output runs name with args and returns its complete standard output.
func Output(ctx context.Context, r Runner, name string, args []string) ([]byte, error) {
	var out []byte
	err := Stream(ctx, r, name, args, func(stdout io.Reader) error {
		var err error
		out, err = io.ReadAll(stdout)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DumpArgs returns the grib_dump arguments that print the given keys of the
// messages matching filter as JSON. An empty filter selects every message.
func DumpArgs(filter string, keys []string, path string) []string {
	args := []string{"-j"}
	if filter != "" {
		args = append(args, "-w", filter)
	}
	return append(args, "-p", strings.Join(keys, ","), path)
}

// DumpAllArgs returns the grib_dump arguments that print every key of every
// message as a single JSON document.
func DumpAllArgs(path string) []string {
	return []string{"-j", path}
}

// GetArgs returns the grib_get arguments that print the given keys, one line
// per message.
func GetArgs(keys []string, path string) []string {
	return []string{"-p", strings.Join(keys, ","), path}
}
