//go:build !windows

// Package runtime launches scripts and shell commands on the host platform.
//
// This file (shell_unix.go) is compiled on all non-Windows platforms (Linux, macOS, BSD, etc.)
// due to the build constraint "!windows" above.
package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"golang.org/x/sys/unix"
)

// RunShell executes a shell command using /bin/sh on Unix-like systems.
//
// env holds extra "KEY=value" pairs added to the inherited environment.
// The combined stdout and stderr output is returned; a non-zero exit is an error.
func RunShell(ctx context.Context, cmdline string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("command failed: %s\n%s", err, string(out))
	}
	return string(out), nil
}

// defaultCommand picks how to start path when no interpreter is configured:
// executables run directly, everything else goes through sh. Batch files
// have no native host here.
func defaultCommand(path string, args []string) (string, []string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bat", ".cmd":
		return "", nil, fmt.Errorf("%s files cannot run on %s without an interpreter (set interpreters[%q])", ext, goruntime.GOOS, ext)
	}
	if fi, err := os.Stat(path); err == nil && fi.Mode()&0o111 != 0 {
		return path, args, nil
	}
	return "sh", append([]string{path}, args...), nil
}

// elevateCommand wraps name and argv in sudo.
func elevateCommand(name string, argv []string) (string, []string) {
	return "sudo", append([]string{name}, argv...)
}

func isElevated() bool {
	return unix.Geteuid() == 0
}
