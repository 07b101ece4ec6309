// Package core implements the batchrun commands.
//
// This package contains the three editor commands (run-file, run-file-with-args,
// run-file-elevated), the executor that localizes a document and launches it,
// configuration parsing and the run history.
//
// Key components:
//   - config.go: Configuration file structure and parsing
//   - engine.go: Command handlers and the host command table
//   - executor.go: Localize-then-launch execution service
//   - history.go: Run history structure and I/O
//   - hash.go: File hashing and cache helpers
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jprybylski/batchrun/internal/editor"
)

// Config represents the structure of the .batchrun.yaml configuration file.
//
// Every field is optional; a missing file yields the defaults.
type Config struct {
	Version      int               `yaml:"version"`                // Config file format version (currently 1)
	Defaults     Defaults          `yaml:"defaults"`               // Locations used by every command
	Interpreters map[string]string `yaml:"interpreters,omitempty"` // File extension -> interpreter command line
	Schemes      []Scheme          `yaml:"schemes,omitempty"`      // Command-backed URI schemes
}

// Defaults holds the paths batchrun reads and writes.
type Defaults struct {
	CacheDir    string `yaml:"cache_dir"`    // Where non-file documents are materialized
	History     string `yaml:"history"`      // Run history file
	ActiveState string `yaml:"active_state"` // Editor state file naming the focused document
	ActiveEnv   string `yaml:"active_env"`   // Environment variable naming the focused document
}

// Scheme maps a URI scheme to a shell command that copies the document to
// {{dest}}. The template may also use {{scheme}}, {{authority}}, {{path}},
// {{query}} and {{uri}}.
type Scheme struct {
	Scheme   string `yaml:"scheme"`
	FetchCmd string `yaml:"fetch_cmd"`
}

// LoadConfig reads the configuration file at path and applies defaults.
//
// A missing file is only an error when mustExist is set, which the CLI does
// when --config was given explicitly.
func LoadConfig(path string, mustExist bool) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !mustExist:
	default:
		return nil, err
	}

	if c.Version == 0 {
		c.Version = 1
	}
	c.Defaults.CacheDir = firstNonEmpty(c.Defaults.CacheDir, defaultCacheDir())
	c.Defaults.History = firstNonEmpty(c.Defaults.History, filepath.Join(defaultStateDir(), "history.yaml"))
	c.Defaults.ActiveEnv = firstNonEmpty(c.Defaults.ActiveEnv, editor.DefaultEnv)

	interps := make(map[string]string, len(c.Interpreters))
	for ext, line := range c.Interpreters {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		interps[ext] = line
	}
	c.Interpreters = interps

	for i, s := range c.Schemes {
		if err := validateScheme(&s); err != nil {
			return nil, fmt.Errorf("scheme %d (%s): %w", i, s.Scheme, err)
		}
	}

	return &c, nil
}

// validateScheme checks that a command-backed scheme is usable.
func validateScheme(s *Scheme) error {
	if strings.TrimSpace(s.Scheme) == "" {
		return fmt.Errorf("scheme must have a name")
	}
	if strings.TrimSpace(s.FetchCmd) == "" {
		return fmt.Errorf("scheme must have a fetch_cmd")
	}
	if strings.EqualFold(s.Scheme, "file") {
		return fmt.Errorf("the file scheme cannot be overridden")
	}
	return nil
}

func defaultCacheDir() string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return filepath.Join(v, "batchrun")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "batchrun")
}

func defaultStateDir() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return filepath.Join(v, "batchrun")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "batchrun")
}
