// Batchrun runs script files (batch, shell, PowerShell) on behalf of an editor.
//
// The editor integration invokes one of the three commands with whatever it
// knows about the document: a URI, a path, or the JSON argument its command
// system produced (an editor tab, a diff view, or nothing at all). batchrun
// works out which file is meant, localizes it if it is not a plain file, and
// launches it with optional arguments or elevation.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"github.com/jprybylski/batchrun/internal/core"
	"github.com/jprybylski/batchrun/internal/resolve"

	// Side-effect imports register the scheme handlers via init()
	_ "github.com/jprybylski/batchrun/internal/handlers/file"
	_ "github.com/jprybylski/batchrun/internal/handlers/git"
	_ "github.com/jprybylski/batchrun/internal/handlers/http"
)

// Exit codes:
//
//	0 = Success, or the argument prompt was cancelled (no action taken)
//	1 = The script could not be launched or exited non-zero
//	2 = No file to act on, invalid usage or configuration error
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "batchrun"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(&app{logger: logger})
	err := root.ExecuteContext(ctx)
	if err != nil {
		logger.Error(err.Error())
	}
	stop()
	os.Exit(exitCode(err))
}

// usageError marks errors caused by how batchrun was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, resolve.ErrNotFound),
		errors.Is(err, core.ErrUnknownCommand),
		errors.As(err, &ue):
		return exitUsage
	default:
		return exitFailed
	}
}
