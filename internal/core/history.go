package core

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jprybylski/batchrun/internal/uri"
)

// History is the run history file, keyed by normalized document URI.
type History struct {
	Version int                     `yaml:"version"`
	LastRun *time.Time              `yaml:"last_run,omitempty"`
	Items   map[string]*HistoryItem `yaml:"items"`
}

// HistoryItem records the latest run of one document.
type HistoryItem struct {
	Args        []string   `yaml:"args,omitempty"`
	LocalSHA256 string     `yaml:"local_sha256,omitempty"`
	Elevated    bool       `yaml:"elevated,omitempty"`
	Succeeded   bool       `yaml:"succeeded"`
	RanAt       *time.Time `yaml:"ran_at,omitempty"`
}

func historyKey(id uri.ID) string { return id.Normalize().String() }

// readHistory loads the history file. A missing file is an empty history.
func readHistory(path string) (*History, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &History{Version: 1, Items: map[string]*HistoryItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var h History
	if err := yaml.Unmarshal(b, &h); err != nil {
		return nil, err
	}
	if h.Items == nil {
		h.Items = map[string]*HistoryItem{}
	}
	return &h, nil
}

func writeHistory(path string, h *History) error {
	b, err := yaml.Marshal(h)
	if err != nil {
		return err
	}
	return WriteAtomic(path, bytes.NewReader(b))
}

// LastArgs returns the arguments id was last run with, or nil.
func LastArgs(historyPath string, id uri.ID) []string {
	if historyPath == "" {
		return nil
	}
	h, err := readHistory(historyPath)
	if err != nil {
		return nil
	}
	if item := h.Items[historyKey(id)]; item != nil {
		return item.Args
	}
	return nil
}
