//go:build windows

// Package runtime launches scripts and shell commands on the host platform.
//
// This file (shell_windows.go) is compiled only on Windows due to the build constraint above.
//
// Windows shell handling: We use cmd.exe instead of PowerShell for better compatibility
// and to avoid PowerShell's UTF-16 LE default encoding for file redirects (the > operator).
package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

// RunShell executes a shell command using cmd.exe on Windows.
//
// env holds extra "KEY=value" pairs added to the inherited environment.
// The combined stdout and stderr output is returned; a non-zero exit is an error.
func RunShell(ctx context.Context, cmdline string, env []string) (string, error) {
	// /C means "execute command and then terminate"
	cmd := exec.CommandContext(ctx, "cmd", "/C", cmdline)
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("command failed: %s\n%s", err, string(out))
	}
	return string(out), nil
}

// defaultCommand picks how to start path when no interpreter is configured.
func defaultCommand(path string, args []string) (string, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bat", ".cmd":
		return "cmd.exe", append([]string{"/C", path}, args...), nil
	case ".ps1":
		return "powershell.exe", append([]string{"-NoProfile", "-ExecutionPolicy", "Bypass", "-File", path}, args...), nil
	}
	return path, args, nil
}

// elevateCommand relaunches name through PowerShell's Start-Process -Verb RunAs,
// which raises the UAC prompt, and forwards the child's exit code.
func elevateCommand(name string, argv []string) (string, []string) {
	var b strings.Builder
	b.WriteString("$p = Start-Process -FilePath ")
	b.WriteString(psQuote(name))
	if len(argv) > 0 {
		quoted := make([]string, len(argv))
		for i, a := range argv {
			quoted[i] = psQuote(windowsArg(a))
		}
		b.WriteString(" -ArgumentList ")
		b.WriteString(strings.Join(quoted, ","))
	}
	b.WriteString(" -Verb RunAs -Wait -PassThru; exit $p.ExitCode")
	return "powershell.exe", []string{"-NoProfile", "-Command", b.String()}
}

// psQuote renders s as a single-quoted PowerShell literal.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// windowsArg quotes an argument Start-Process would otherwise split on spaces.
func windowsArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func isElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
