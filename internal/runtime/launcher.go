package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"
)

// Launcher starts script files and waits for them.
type Launcher struct {
	// Interpreters maps a lower-case extension (".ps1") to the command line
	// that runs it; the script path and its arguments are appended.
	Interpreters map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *log.Logger
}

// NewLauncher returns a Launcher attached to the process's standard streams.
func NewLauncher(interpreters map[string]string, logger *log.Logger) *Launcher {
	return &Launcher{
		Interpreters: interpreters,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Logger:       logger,
	}
}

// Run executes path with args from the script's directory. With elevate set
// the command is relaunched with administrator rights unless the process
// already has them. A non-zero exit status is returned as an error.
func (l *Launcher) Run(ctx context.Context, path string, args []string, elevate bool) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	name, argv, err := l.Command(path, args)
	if err != nil {
		return err
	}
	if elevate {
		if isElevated() {
			l.logger().Debug("already elevated, running directly")
		} else {
			name, argv = elevateCommand(name, argv)
		}
	}

	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Dir = filepath.Dir(path)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	l.logger().Debug("exec", "name", name, "argv", argv, "dir", cmd.Dir)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d: %w", filepath.Base(path), exitErr.ExitCode(), err)
		}
		return fmt.Errorf("launch %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Command returns the program and arguments used to run path.
func (l *Launcher) Command(path string, args []string) (string, []string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if line := strings.TrimSpace(l.Interpreters[ext]); line != "" {
		fields, err := shell.Fields(line, nil)
		if err != nil {
			return "", nil, fmt.Errorf("interpreter for %s: %w", ext, err)
		}
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("interpreter for %s is empty", ext)
		}
		argv := append(fields[1:len(fields):len(fields)], path)
		return fields[0], append(argv, args...), nil
	}
	return defaultCommand(path, args)
}

func (l *Launcher) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.New(io.Discard)
}
