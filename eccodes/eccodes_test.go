package eccodes_test

import (
	"context"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdifrance/ecgrib/eccodes"
	"github.com/sdifrance/ecgrib/eccodes/eccodestest"
)

func TestOutput(t *testing.T) {
	tests := []struct {
		name        string
		script      eccodestest.Script
		want        string
		wantErrText string
	}{
		{
			name:   "success",
			script: eccodestest.Script{Stdout: "swh\nperpw\n", Stderr: "warning: ignored\n"},
			want:   "swh\nperpw\n",
		},
		{
			name:        "non-zero exit surfaces stderr",
			script:      eccodestest.Script{Stdout: "partial", Stderr: "boom", ExitCode: 1},
			wantErrText: "grib_dump failed: boom",
		},
		{
			name:        "non-zero exit without stderr",
			script:      eccodestest.Script{ExitCode: 2},
			wantErrText: "grib_dump failed (exit code 2)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := eccodestest.NewRunner(tt.script)
			got, err := eccodes.Output(context.Background(), r, "grib_dump", []string{"-j", "f.grib2"})
			if tt.wantErrText != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
				assert.Nil(t, got)

				var perr *eccodes.ProcessError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, tt.script.ExitCode, perr.ExitCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestStreamProcessFailureTakesPrecedence(t *testing.T) {
	r := eccodestest.NewRunner(eccodestest.Script{Stdout: "x", Stderr: "boom", ExitCode: 1})
	err := eccodes.Stream(context.Background(), r, "grib_dump", nil, func(io.Reader) error {
		return errors.New("consumer failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NotContains(t, err.Error(), "consumer failed")
}

func TestStreamConsumerError(t *testing.T) {
	r := eccodestest.NewRunner(eccodestest.Script{Stdout: "x"})
	err := eccodes.Stream(context.Background(), r, "grib_dump", nil, func(io.Reader) error {
		return errors.New("consumer failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumer failed")
}

func TestStreamCancelledContextIsFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := eccodestest.NewRunner(eccodestest.Script{Stdout: "complete looking output"})
	_, err := eccodes.Output(ctx, r, "grib_dump", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStartErrorsPassThrough(t *testing.T) {
	missing := &eccodes.MissingToolError{Tool: "grib_dump", Err: exec.ErrNotFound}
	r := eccodestest.NewRunner(eccodestest.Script{StartErr: missing})
	_, err := eccodes.Output(context.Background(), r, "grib_dump", nil)
	require.Error(t, err)

	var mte *eccodes.MissingToolError
	require.True(t, errors.As(err, &mte))
	assert.Contains(t, err.Error(), "grib_dump command not found")
	assert.Contains(t, err.Error(), "brew install eccodes")
}

func TestExecRunnerMissingTool(t *testing.T) {
	_, err := eccodes.Output(context.Background(), eccodes.ExecRunner{}, "grib_dump-definitely-not-installed", nil)
	require.Error(t, err)

	var mte *eccodes.MissingToolError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, "grib_dump-definitely-not-installed", mte.Tool)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestExecRunnerGenericSpawnFailure(t *testing.T) {
	// A directory is found on disk but cannot be executed.
	_, err := eccodes.Output(context.Background(), eccodes.ExecRunner{}, t.TempDir(), nil)
	require.Error(t, err)

	var mte *eccodes.MissingToolError
	assert.False(t, errors.As(err, &mte))
	assert.Contains(t, err.Error(), "failed to spawn")
}

func TestExecRunnerExitStatus(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	out, err := eccodes.Output(context.Background(), eccodes.ExecRunner{}, sh, []string{"-c", "echo ok"})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(out))

	_, err = eccodes.Output(context.Background(), eccodes.ExecRunner{}, sh, []string{"-c", "echo boom >&2; exit 3"})
	require.Error(t, err)
	var perr *eccodes.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.ExitCode)
	assert.Equal(t, "boom\n", perr.Stderr)
}

func TestExecRunnerDrainsStderrWhileReadingStdout(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// More than a pipe buffer of diagnostics precedes any output.
	script := "head -c 1100000 /dev/zero >&2; head -c 2000000 /dev/zero; echo"
	out, err := eccodes.Output(ctx, eccodes.ExecRunner{}, sh, []string{"-c", script})
	require.NoError(t, err)
	assert.Len(t, out, 2000001)
}

func TestExecRunnerDeadlineWithLingeringDescendant(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	// The background sleep inherits stdout and outlives the killed shell.
	_, err = eccodes.Output(ctx, eccodes.ExecRunner{WaitDelay: 100 * time.Millisecond}, sh,
		[]string{"-c", "(sleep 5; echo late) & echo started; wait"})
	elapsed := time.Since(start)

	require.Error(t, err)
	var perr *eccodes.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{
			name: "dump with filter",
			got:  eccodes.DumpArgs("parameterCategory=0,parameterNumber=3", []string{"shortName", "values"}, "/data/f.grib2"),
			want: []string{"-j", "-w", "parameterCategory=0,parameterNumber=3", "-p", "shortName,values", "/data/f.grib2"},
		},
		{
			name: "dump without filter",
			got:  eccodes.DumpArgs("", []string{"Ni", "Nj"}, "/data/f.grib2"),
			want: []string{"-j", "-p", "Ni,Nj", "/data/f.grib2"},
		},
		{
			name: "dump all",
			got:  eccodes.DumpAllArgs("/data/f.grib2"),
			want: []string{"-j", "/data/f.grib2"},
		},
		{
			name: "get",
			got:  eccodes.GetArgs([]string{"shortName", "level"}, "/data/f.grib2"),
			want: []string{"-p", "shortName,level", "/data/f.grib2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
