// Package fs provides file-backed implementations: the conflict record
// store, the manuscript text extractor and the explanation cache.
package fs

import (
	"os"
	"path/filepath"
)

// RecordSuffix is appended to a base document's path to name its conflict record.
const RecordSuffix = ".conflicts.json"

// RecordPath returns the conflict record path stored next to base.
func RecordPath(base string) string {
	return base + RecordSuffix
}

// DefaultCacheDir returns the default cache directory for revise.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/revise,
// or system temp directory if home is unavailable.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "revise")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "revise")
	}
	return filepath.Join(home, ".cache", "revise")
}

// writeAtomic writes data to a temporary file beside path and renames it
// into place, so readers never observe a partial write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
