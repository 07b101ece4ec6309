package core

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/jprybylski/batchrun/internal/uri"
)

// HashFile computes the SHA256 hash of a file's contents.
//
// The run history records it so a later run of the same URI can tell whether
// the script changed in between. The hash is a lowercase hexadecimal string.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteAtomic streams r into dest through a uniquely named temporary sibling
// and renames it into place, creating parent directories as needed. A failed
// write leaves no partial file behind, and concurrent writers of the same dest
// never share a temporary file.
func WriteAtomic(dest string, r io.Reader) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// CachePath returns where a materialized copy of id is stored below cacheDir.
// The file keeps the document's base name so its extension still selects the
// interpreter.
func CachePath(cacheDir string, id uri.ID) string {
	return CachePathNamed(cacheDir, id, id.Base())
}

// CachePathNamed is CachePath with an explicit file name, for schemes whose
// URI path is not the real file name.
func CachePathNamed(cacheDir string, id uri.ID, name string) string {
	return filepath.Join(cacheDir, id.Scheme, shortHash(id.Normalize().String()), name)
}

func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:16]
}

// fileExists checks whether a file or directory exists at the given path.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// firstNonEmpty returns a if it's not empty, otherwise b.
// Common use case: a flag value (if set) or the config default (fallback).
func firstNonEmpty(a, b string) string {
	if len(a) > 0 {
		return a
	}
	return b
}
