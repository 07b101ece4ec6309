// Package prompt asks the user for the argument list of a script.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"

	"github.com/jprybylski/batchrun/internal/uri"
)

// Prompter reads an argument line from the terminal. The line is split with
// shell rules, so quoting and $VAR expansion behave as in a shell.
type Prompter struct {
	// Defaults returns the arguments offered as the initial answer, usually the
	// ones the document was last run with.
	Defaults func(uri.ID) []string

	// Stdin and Stdout carry the prompt. New prompts on stderr so stdout only
	// carries the script's output.
	Stdin  io.ReadCloser
	Stdout io.WriteCloser

	ask func(label, def string) (string, error)
}

// New returns a Prompter reading stdin and prompting on stderr.
func New(defaults func(uri.ID) []string) *Prompter {
	return &Prompter{Defaults: defaults, Stdin: os.Stdin, Stdout: os.Stderr}
}

// AskForArguments prompts for id's arguments. ok is false when the user
// interrupted or closed the prompt. An empty answer means no arguments.
func (p *Prompter) AskForArguments(ctx context.Context, id uri.ID) ([]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var def string
	if p.Defaults != nil {
		def = JoinArgs(p.Defaults(id))
	}

	line, err := p.readLine(fmt.Sprintf("Arguments for %s", id.Base()), def)
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("prompt failed: %w", err)
	}
	args, err := SplitArgs(line)
	if err != nil {
		return nil, false, err
	}
	return args, true, nil
}

func (p *Prompter) readLine(label, def string) (string, error) {
	if p.ask != nil {
		return p.ask(label, def)
	}
	pr := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Stdin:     p.Stdin,
		Stdout:    p.Stdout,
	}
	return pr.Run()
}

// Static answers every prompt with the same argument line, for
// non-interactive use.
type Static string

// AskForArguments splits the static line.
func (s Static) AskForArguments(_ context.Context, _ uri.ID) ([]string, bool, error) {
	args, err := SplitArgs(string(s))
	if err != nil {
		return nil, false, err
	}
	return args, true, nil
}

// SplitArgs splits an argument line with shell quoting rules.
func SplitArgs(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return []string{}, nil
	}
	args, err := shell.Fields(line, nil)
	if err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	return args, nil
}

// JoinArgs renders args as a line SplitArgs reads back unchanged.
func JoinArgs(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = a
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " ")
}
