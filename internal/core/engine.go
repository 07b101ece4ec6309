package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/jprybylski/batchrun/internal/resolve"
	"github.com/jprybylski/batchrun/internal/uri"
)

// Host command IDs, as registered by the editor integration.
const (
	CmdRunFile         = "batch-runner.execBatchFile"
	CmdRunFileWithArgs = "batch-runner.execBatchFileArgs"
	CmdRunFileElevated = "batch-runner.execBatchFileAdmin"
)

// ErrUnknownCommand is returned by Service.Execute for an unregistered command ID.
var ErrUnknownCommand = errors.New("unknown command")

// Executor runs a document. It returns true when the run succeeded.
type Executor interface {
	Run(ctx context.Context, id uri.ID, args []string, elevate bool) (bool, error)
}

// Prompter asks the user for an argument list. ok is false when the user
// cancelled.
type Prompter interface {
	AskForArguments(ctx context.Context, id uri.ID) (args []string, ok bool, err error)
}

// CommandFunc is the signature shared by the three commands.
type CommandFunc func(ctx context.Context, arg resolve.Argument) (bool, error)

// Service wires the resolver to its collaborators.
type Service struct {
	Active   resolve.ContextProvider
	Prompter Prompter
	Executor Executor
	Logger   *log.Logger
}

// RunFile resolves the document and runs it without arguments.
func (s *Service) RunFile(ctx context.Context, arg resolve.Argument) (bool, error) {
	id, err := s.resolve(arg)
	if err != nil {
		return false, err
	}
	return s.Executor.Run(ctx, id, []string{}, false)
}

// RunFileWithArgs resolves the document, asks for arguments and runs it with
// them. A cancelled prompt is not an error: nothing runs and false is returned.
func (s *Service) RunFileWithArgs(ctx context.Context, arg resolve.Argument) (bool, error) {
	id, err := s.resolve(arg)
	if err != nil {
		return false, err
	}
	if s.Prompter == nil {
		return false, errors.New("no argument prompt configured")
	}
	args, ok, err := s.Prompter.AskForArguments(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger().Info("[SKIP] " + id.Base() + ": argument prompt cancelled, no action taken")
		return false, nil
	}
	return s.Executor.Run(ctx, id, args, false)
}

// RunFileElevated resolves the document and runs it elevated, without arguments.
func (s *Service) RunFileElevated(ctx context.Context, arg resolve.Argument) (bool, error) {
	id, err := s.resolve(arg)
	if err != nil {
		return false, err
	}
	return s.Executor.Run(ctx, id, []string{}, true)
}

// Commands returns the host command table.
func (s *Service) Commands() map[string]CommandFunc {
	return map[string]CommandFunc{
		CmdRunFile:         s.RunFile,
		CmdRunFileWithArgs: s.RunFileWithArgs,
		CmdRunFileElevated: s.RunFileElevated,
	}
}

// CommandIDs lists the registered command IDs in sorted order.
func (s *Service) CommandIDs() []string {
	ids := make([]string, 0, 3)
	for id := range s.Commands() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Execute dispatches a host command ID.
func (s *Service) Execute(ctx context.Context, commandID string, arg resolve.Argument) (bool, error) {
	fn, ok := s.Commands()[commandID]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, commandID)
	}
	return fn(ctx, arg)
}

func (s *Service) resolve(arg resolve.Argument) (uri.ID, error) {
	if arg == nil {
		arg = resolve.None{}
	}
	id, err := resolve.Resolve(arg, s.Active)
	if err != nil {
		return uri.ID{}, err
	}
	s.logger().Debug("[RSLV] resolved", "uri", id.String())
	return id, nil
}

func (s *Service) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.New(io.Discard)
}
