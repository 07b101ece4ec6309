package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jprybylski/batchrun/internal/registry"
	"github.com/jprybylski/batchrun/internal/uri"
)

func TestHandler_Scheme(t *testing.T) {
	h := New()
	if got := h.Scheme(); got != "file" {
		t.Errorf("Scheme() = %v, want file", got)
	}
	if _, ok := registry.Get("file"); !ok {
		t.Error("file handler not registered")
	}
}

func TestHandler_Localize(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()
	h := New()

	testFile := filepath.Join(tmpDir, "build.bat")
	if err := os.WriteFile(testFile, []byte("@echo off\n"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	t.Run("existing file", func(t *testing.T) {
		id, err := uri.FromPath(testFile)
		if err != nil {
			t.Fatalf("FromPath() error = %v", err)
		}
		got, err := h.Localize(ctx, id, "")
		if err != nil {
			t.Fatalf("Localize() error = %v", err)
		}
		if got != testFile {
			t.Errorf("Localize() = %v, want %v", got, testFile)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := h.Localize(ctx, uri.ID{Scheme: "file"}, ""); err == nil {
			t.Error("Localize() expected error for missing path, got nil")
		}
	})

	t.Run("non-existent file", func(t *testing.T) {
		id, _ := uri.FromPath(filepath.Join(tmpDir, "nonexistent.bat"))
		if _, err := h.Localize(ctx, id, ""); err == nil {
			t.Error("Localize() expected error for non-existent file, got nil")
		}
	})

	t.Run("directory", func(t *testing.T) {
		id, _ := uri.FromPath(tmpDir)
		if _, err := h.Localize(ctx, id, ""); err == nil {
			t.Error("Localize() expected error for a directory, got nil")
		}
	})
}
