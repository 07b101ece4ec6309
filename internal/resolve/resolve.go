// Package resolve decides which document a command invocation is about.
//
// Commands are triggered from several places: the file explorer hands over a
// URI, an editor tab hands over an object carrying resourceUri, a diff view
// hands over its original and modified sides, and the command palette hands
// over nothing at all. Decode converts whatever arrived into an Argument once,
// at the boundary, and Resolve picks the document from it and the editor's
// active document.
package resolve

import (
	"errors"

	"github.com/jprybylski/batchrun/internal/uri"
)

// ErrNotFound is returned when neither the argument nor the editor names a
// document. It is a user-facing condition, not a defect.
var ErrNotFound = errors.New("no file path provided")

// Argument is the closed set of invocation argument shapes.
type Argument interface {
	isArgument()
}

// Direct is an argument that is itself a document identifier.
type Direct struct{ URI uri.ID }

// Resource is an object exposing a nested resourceUri.
type Resource struct{ URI uri.ID }

// Diff describes a two-pane comparison view.
type Diff struct {
	Original uri.ID
	Modified uri.ID
}

// None is an absent or unrecognised argument.
type None struct{}

func (Direct) isArgument()   {}
func (Resource) isArgument() {}
func (Diff) isArgument()     {}
func (None) isArgument()     {}

// ContextProvider reports the document that currently holds editor focus.
// Implementations must read the editor state on every call.
type ContextProvider interface {
	ActiveContext() (uri.ID, bool)
}

// ContextFunc adapts a function to ContextProvider.
type ContextFunc func() (uri.ID, bool)

// ActiveContext calls f.
func (f ContextFunc) ActiveContext() (uri.ID, bool) { return f() }

// Resolve returns the document the user means. The first matching rule wins:
// a direct identifier, then a nested resourceUri, then the focused side of a
// diff (modified when focus matches neither side), then the active document.
func Resolve(arg Argument, active ContextProvider) (uri.ID, error) {
	switch a := arg.(type) {
	case Direct:
		return a.URI, nil
	case Resource:
		return a.URI, nil
	case Diff:
		if cur, ok := readActive(active); ok {
			if cur.Equal(a.Original) {
				return a.Original, nil
			}
			if cur.Equal(a.Modified) {
				return a.Modified, nil
			}
		}
		// Focus is not reported by the host; the right-hand side is the one
		// being edited in the common case.
		return a.Modified, nil
	}
	if cur, ok := readActive(active); ok {
		return cur, nil
	}
	return uri.ID{}, ErrNotFound
}

func readActive(p ContextProvider) (uri.ID, bool) {
	if p == nil {
		return uri.ID{}, false
	}
	id, ok := p.ActiveContext()
	if !ok || id.IsZero() {
		return uri.ID{}, false
	}
	return id, true
}
