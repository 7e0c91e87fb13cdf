// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rundir creates the per-run output directory and records the run
// configuration in it.
package rundir

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/pkg/types"
)

const (
	prefix       = "purity"
	metadataFile = "metadata.yaml"
)

// Dir is one run output directory.
type Dir struct {
	// ID is the run identifier shared with the results store.
	ID   string
	Path string
}

// Create makes a new directory <root>/purity_<timestamp>_<id8> where id8 is
// the first eight characters of a fresh run ID.
func Create(root string, now time.Time) (*Dir, error) {
	if root == "" {
		root = "output"
	}
	id := uuid.NewString()
	name := fmt.Sprintf("%s_%s_%s", prefix, now.Format("20060102_150405"), id[:8])
	path := filepath.Join(root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	return &Dir{ID: id, Path: path}, nil
}

// File returns the path of name inside the run directory.
func (d *Dir) File(name string) string {
	return filepath.Join(d.Path, name)
}

// WriteMetadata writes cfg to metadata.yaml in the run directory.
func (d *Dir) WriteMetadata(cfg types.RunConfig) error {
	data, err := yaml.Marshal(metadata{ID: d.ID, Config: cfg})
	if err != nil {
		return fmt.Errorf("marshaling run metadata: %w", err)
	}
	if err := os.WriteFile(d.File(metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing run metadata: %w", err)
	}
	return nil
}

type metadata struct {
	ID     string          `yaml:"id"`
	Config types.RunConfig `yaml:"config"`
}

// ReadMetadata loads the run ID and configuration from the run directory at
// path.
func ReadMetadata(path string) (string, types.RunConfig, error) {
	data, err := os.ReadFile(filepath.Join(path, metadataFile))
	if err != nil {
		return "", types.RunConfig{}, fmt.Errorf("reading run metadata: %w", err)
	}
	var m metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return "", types.RunConfig{}, fmt.Errorf("parsing run metadata: %w", err)
	}
	return m.ID, m.Config, nil
}
