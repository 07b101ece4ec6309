// Package registry maps URI schemes to the handlers that turn a document into a
// local file batchrun can execute.
//
// Handlers register themselves from init() (file, git, http) or at startup from
// configuration (command-backed schemes) and are looked up by scheme name.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jprybylski/batchrun/internal/uri"
)

// Localizer is implemented by every scheme handler.
type Localizer interface {
	// Scheme returns the URI scheme the handler serves (e.g. "file", "git").
	Scheme() string

	// Localize returns the path of a local file holding the document's content.
	// Handlers that have to materialize content write it below cacheDir.
	Localize(ctx context.Context, id uri.ID, cacheDir string) (string, error)
}

var (
	mu         sync.RWMutex
	localizers = map[string]Localizer{}
)

// Register adds a handler, replacing any handler for the same scheme.
//
//	func init() {
//	    registry.Register(New())
//	}
func Register(l Localizer) {
	mu.Lock()
	defer mu.Unlock()
	localizers[strings.ToLower(l.Scheme())] = l
}

// Get retrieves the handler for a scheme.
func Get(scheme string) (Localizer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	l, ok := localizers[strings.ToLower(scheme)]
	return l, ok
}

// Schemes lists the registered schemes in sorted order.
func Schemes() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(localizers))
	for s := range localizers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Localize dispatches id to the handler registered for its scheme.
func Localize(ctx context.Context, id uri.ID, cacheDir string) (string, error) {
	l, ok := Get(id.Scheme)
	if !ok {
		return "", fmt.Errorf("no handler for scheme %q (have %s)", id.Scheme, strings.Join(Schemes(), ", "))
	}
	return l.Localize(ctx, id, cacheDir)
}
