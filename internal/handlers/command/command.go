package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jprybylski/batchrun/internal/core"
	"github.com/jprybylski/batchrun/internal/registry"
	runrt "github.com/jprybylski/batchrun/internal/runtime"
	"github.com/jprybylski/batchrun/internal/uri"
)

// handler serves a configured scheme by running a shell command that copies
// the document to {{dest}}.
type handler struct {
	scheme   string
	fetchCmd string
}

func New(s core.Scheme) *handler {
	return &handler{scheme: strings.ToLower(s.Scheme), fetchCmd: s.FetchCmd}
}

func (h *handler) Scheme() string { return h.scheme }

func (h *handler) Localize(ctx context.Context, id uri.ID, cacheDir string) (string, error) {
	if strings.TrimSpace(h.fetchCmd) == "" {
		return "", errors.New("command: missing fetch_cmd")
	}
	dest := core.CachePath(cacheDir, id)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	env := []string{"DEST=" + dest}
	cmd := substitute(h.fetchCmd, id, dest)
	if _, err := runrt.RunShell(ctx, cmd, env); err != nil {
		return "", fmt.Errorf("command: %s: %w", h.scheme, err)
	}
	if _, err := os.Stat(dest); err != nil {
		return "", fmt.Errorf("command: %s: fetch_cmd did not produce %s", h.scheme, dest)
	}
	return dest, nil
}

func substitute(tmpl string, id uri.ID, dest string) string {
	r := strings.NewReplacer(
		"{{scheme}}", id.Scheme,
		"{{authority}}", id.Authority,
		"{{path}}", id.Path,
		"{{query}}", id.DecodedQuery(),
		"{{uri}}", id.String(),
		"{{dest}}", dest,
	)
	return r.Replace(tmpl)
}

// RegisterSchemes registers a handler for every configured scheme.
func RegisterSchemes(schemes []core.Scheme) {
	for _, s := range schemes {
		registry.Register(New(s))
	}
}
