package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jprybylski/batchrun/internal/core"
	"github.com/jprybylski/batchrun/internal/resolve"
	"github.com/jprybylski/batchrun/internal/uri"
)

// runCLI executes the root command with args and returns the exit code.
func runCLI(t *testing.T, args ...string) int {
	t.Helper()
	root := newRootCmd(&app{logger: log.New(io.Discard)})
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return exitCode(root.ExecuteContext(context.Background()))
}

// setup writes a script that records its arguments to out.txt next to it and
// isolates every location batchrun reads from.
func setup(t *testing.T) (script, out, history string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	dir := t.TempDir()
	script = filepath.Join(dir, "record.sh")
	out = filepath.Join(dir, "out.txt")
	history = filepath.Join(dir, "history.yaml")
	require.NoError(t, os.WriteFile(script, []byte("printf '%s\\n' \"$@\" > out.txt\n"), 0o644))

	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("BATCHRUN_ACTIVE_FILE", "")
	return script, out, history
}

func TestRunFile(t *testing.T) {
	script, out, history := setup(t)

	assert.Equal(t, exitOK, runCLI(t, "--history", history, "run-file", script))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "\n", string(b))
	assert.FileExists(t, history)
}

func TestRunFile_ActiveDocument(t *testing.T) {
	script, out, history := setup(t)

	t.Run("from --active", func(t *testing.T) {
		assert.Equal(t, exitOK, runCLI(t, "--history", history, "--active", script, "run-file"))
		assert.FileExists(t, out)
	})

	t.Run("from environment", func(t *testing.T) {
		require.NoError(t, os.Remove(out))
		t.Setenv("BATCHRUN_ACTIVE_FILE", "file://"+filepath.ToSlash(script))
		assert.Equal(t, exitOK, runCLI(t, "--history", history, "run-file", "null"))
		assert.FileExists(t, out)
	})
}

func TestRunFile_NothingToRun(t *testing.T) {
	_, out, history := setup(t)

	assert.Equal(t, exitUsage, runCLI(t, "--history", history, "run-file"))
	assert.NoFileExists(t, out)
}

func TestRunFileWithArgs(t *testing.T) {
	script, out, history := setup(t)

	arg := fmt.Sprintf(`{"resourceUri":"file://%s"}`, filepath.ToSlash(script))
	assert.Equal(t, exitOK, runCLI(t, "--history", history, "run-file-with-args", "--args", `one "two words"`, arg))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo words\n", string(b))

	id, err := uri.Parse(script)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two words"}, core.LastArgs(history, id))
}

func TestExec(t *testing.T) {
	script, out, history := setup(t)
	other := filepath.Join(filepath.Dir(script), "other.sh")
	require.NoError(t, os.WriteFile(other, []byte("exit 0\n"), 0o644))

	t.Run("diff argument runs the focused side", func(t *testing.T) {
		arg := fmt.Sprintf(`{"original":"file://%s","modified":"file://%s"}`,
			filepath.ToSlash(script), filepath.ToSlash(other))
		assert.Equal(t, exitOK, runCLI(t, "--history", history, "--active", script, "exec", core.CmdRunFile, arg))
		assert.FileExists(t, out)
	})

	t.Run("unknown command", func(t *testing.T) {
		assert.Equal(t, exitUsage, runCLI(t, "--history", history, "exec", "batch-runner.nope", script))
	})

	t.Run("missing command id", func(t *testing.T) {
		assert.Equal(t, exitUsage, runCLI(t, "exec"))
	})
}

func TestExitCodes(t *testing.T) {
	script, _, history := setup(t)
	failing := filepath.Join(filepath.Dir(script), "fail.sh")
	require.NoError(t, os.WriteFile(failing, []byte("exit 3\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"script fails", []string{"--history", history, "run-file", failing}, exitFailed},
		{"missing file", []string{"--history", history, "run-file", filepath.Join(filepath.Dir(script), "gone.sh")}, exitFailed},
		{"malformed argument", []string{"run-file", `{"resourceUri":`}, exitUsage},
		{"too many arguments", []string{"run-file", "a", "b"}, exitUsage},
		{"unknown flag", []string{"run-file", "--nope"}, exitUsage},
		{"explicit config missing", []string{"--config", filepath.Join(filepath.Dir(script), "none.yaml"), "run-file", script}, exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runCLI(t, tt.args...))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitUsage, exitCode(fmt.Errorf("wrapped: %w", resolve.ErrNotFound)))
	assert.Equal(t, exitUsage, exitCode(usageError{errors.New("bad flag")}))
	assert.Equal(t, exitFailed, exitCode(errors.New("exited with code 1")))
}
