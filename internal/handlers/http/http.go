package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jprybylski/batchrun/internal/core"
	"github.com/jprybylski/batchrun/internal/registry"
	"github.com/jprybylski/batchrun/internal/uri"
)

type handler struct {
	scheme string
	client *http.Client
}

func New(scheme string) *handler {
	return &handler{scheme: scheme, client: &http.Client{Timeout: 60 * time.Second}}
}

func (h *handler) Scheme() string { return h.scheme }

// Localize downloads the document into the cache and returns the copy's path.
func (h *handler) Localize(ctx context.Context, id uri.ID, cacheDir string) (string, error) {
	if id.Authority == "" {
		return "", errors.New("http: missing host")
	}
	src := id.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("http GET %s: %s", src, resp.Status)
	}

	dest := core.CachePath(cacheDir, id)
	if err := core.WriteAtomic(dest, resp.Body); err != nil {
		return "", err
	}
	return dest, nil
}

func init() {
	registry.Register(New("http"))
	registry.Register(New("https"))
}
