package eccodes

import (
	"fmt"
)

// MissingToolError is returned when an ecCodes tool cannot be found in the
// execution environment.
type MissingToolError struct {
	Tool string
	Err  error
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("%s command not found. Please ensure eccodes is installed:\n"+
		"- On MacOS: brew install eccodes\n"+
		"- On Ubuntu: apt-get install libeccodes-tools\n"+
		"- On Windows: install WSL and use the Ubuntu package\n\n"+
		"If already installed, check that %s is in your PATH", e.Tool, e.Tool)
}

func (e *MissingToolError) Unwrap() error { return e.Err }

// ProcessError is returned when an ecCodes tool exits with a non-zero status
// or is terminated before completing. Stderr holds the tool's diagnostics
// verbatim.
type ProcessError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := e.Tool + " failed"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	return fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
}

func (e *ProcessError) Unwrap() error { return e.Err }
