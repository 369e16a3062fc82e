package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/revise/tokenize"
	"gopkg.in/yaml.v3"
)

// Manifest describes one merge job: a base text and the reviewer copies to merge into it.
type Manifest struct {
	Base string `yaml:"base"`
	// BaseRev loads the base from this git revision of Repo instead of the working tree.
	BaseRev     string           `yaml:"base_rev,omitempty"`
	Repo        string           `yaml:"repo,omitempty"`
	Reviewers   []ManifestReview `yaml:"reviewers"`
	Granularity string           `yaml:"granularity,omitempty"`
	Output      string           `yaml:"output,omitempty"`
	Record      string           `yaml:"record,omitempty"`
}

// ManifestReview names one reviewer's copy. Paths ending in .patch or .diff
// are applied to the base as unified diffs.
type ManifestReview struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// IsPatch reports whether the reviewer copy is a unified diff.
func (r ManifestReview) IsPatch() bool {
	ext := strings.ToLower(filepath.Ext(r.Path))
	return ext == ".patch" || ext == ".diff"
}

// ParseManifest decodes and validates a manifest payload. Relative paths are
// resolved against dir.
func ParseManifest(data []byte, dir string) (*Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("manifest: payload is empty")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if err := m.Prepare(dir); err != nil {
		return nil, err
	}
	return &m, nil
}

// Prepare resolves relative paths against dir and validates the manifest.
// ParseManifest calls it; manifests built in code must call it themselves.
func (m *Manifest) Prepare(dir string) error {
	m.normalize(dir)
	if err := m.validate(); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a YAML manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m, err := ParseManifest(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) normalize(dir string) {
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) || dir == "" {
			return p
		}
		return filepath.Join(dir, p)
	}
	// With a revision the base is a path inside the repository, not on disk.
	if m.BaseRev == "" {
		m.Base = resolve(m.Base)
	} else {
		m.Base = strings.TrimSpace(m.Base)
		if m.Repo == "" {
			m.Repo = "."
		}
	}
	m.Repo = resolve(m.Repo)
	m.Output = resolve(m.Output)
	m.Record = resolve(m.Record)
	for i := range m.Reviewers {
		m.Reviewers[i].ID = strings.TrimSpace(m.Reviewers[i].ID)
		m.Reviewers[i].Path = resolve(m.Reviewers[i].Path)
	}
	m.Granularity = strings.TrimSpace(m.Granularity)
}

func (m *Manifest) validate() error {
	if m.Base == "" {
		return fmt.Errorf("base is required")
	}
	if len(m.Reviewers) == 0 {
		return fmt.Errorf("at least one reviewer is required")
	}
	seen := make(map[string]bool, len(m.Reviewers))
	for i, r := range m.Reviewers {
		if r.ID == "" {
			return fmt.Errorf("reviewer #%d: id is required", i+1)
		}
		if r.Path == "" {
			return fmt.Errorf("reviewer %q: path is required", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("reviewer %q listed twice", r.ID)
		}
		seen[r.ID] = true
	}
	if m.Granularity != "" {
		if _, err := tokenize.Lookup(m.Granularity); err != nil {
			return err
		}
	}
	return nil
}
