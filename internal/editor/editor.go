// Package editor provides readers of the editor's active document.
//
// Every provider reads its source on each call; focus can move between two
// invocations and nothing here caches it.
package editor

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jprybylski/batchrun/internal/resolve"
	"github.com/jprybylski/batchrun/internal/uri"
)

// DefaultEnv is the environment variable an editor integration sets to the
// URI or path of the focused document.
const DefaultEnv = "BATCHRUN_ACTIVE_FILE"

// Fixed always reports id. A zero id reports no active document.
func Fixed(id uri.ID) resolve.ContextProvider {
	return resolve.ContextFunc(func() (uri.ID, bool) {
		return id, !id.IsZero()
	})
}

// Env reads the active document from an environment variable.
func Env(name string) resolve.ContextProvider {
	return resolve.ContextFunc(func() (uri.ID, bool) {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return uri.ID{}, false
		}
		id, err := uri.Parse(v)
		if err != nil {
			return uri.ID{}, false
		}
		return id, true
	})
}

// State is the file an editor integration rewrites whenever focus changes.
type State struct {
	Active string `yaml:"active"`
}

// StateFile reads the active document from a YAML state file. A missing or
// unreadable file means no document is active.
func StateFile(path string) resolve.ContextProvider {
	return resolve.ContextFunc(func() (uri.ID, bool) {
		if path == "" {
			return uri.ID{}, false
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return uri.ID{}, false
		}
		var st State
		if err := yaml.Unmarshal(b, &st); err != nil || strings.TrimSpace(st.Active) == "" {
			return uri.ID{}, false
		}
		id, err := uri.Parse(st.Active)
		if err != nil {
			return uri.ID{}, false
		}
		return id, true
	})
}

// Chain reports the first active document found among providers.
func Chain(providers ...resolve.ContextProvider) resolve.ContextProvider {
	return resolve.ContextFunc(func() (uri.ID, bool) {
		for _, p := range providers {
			if p == nil {
				continue
			}
			if id, ok := p.ActiveContext(); ok {
				return id, true
			}
		}
		return uri.ID{}, false
	})
}
