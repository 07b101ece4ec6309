package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jprybylski/batchrun/internal/registry"
	"github.com/jprybylski/batchrun/internal/uri"
)

type handler struct{}

func New() *handler               { return &handler{} }
func (h *handler) Scheme() string { return uri.FileScheme }

// Localize returns the document's own path; nothing is copied.
func (h *handler) Localize(_ context.Context, id uri.ID, _ string) (string, error) {
	if id.Path == "" {
		return "", errors.New("file: missing path")
	}
	p, err := id.LocalPath()
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", fmt.Errorf("file: %s is a directory", p)
	}
	return p, nil
}

func init() {
	registry.Register(New())
}
