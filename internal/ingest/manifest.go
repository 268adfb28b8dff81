// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Manifest is a YAML batch file listing materials to load together.
//
//	materials:
//	  - file: papers/attention.pdf
//	  - url: https://arxiv.org/abs/1706.03762
//	  - text: "10.1145/3442188.3445922"
//	    name: Stochastic Parrots
type Manifest struct {
	Materials []ManifestEntry `yaml:"materials"`
}

// ManifestEntry sets exactly one of File, URL, or Text.
type ManifestEntry struct {
	File string `yaml:"file,omitempty"`
	URL  string `yaml:"url,omitempty"`
	Text string `yaml:"text,omitempty"`
	Name string `yaml:"name,omitempty"`
}

// ReadManifest loads a manifest from disk.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for i, e := range m.Materials {
		if set := countSet(e.File, e.URL, e.Text); set != 1 {
			return nil, fmt.Errorf("manifest entry %d: set exactly one of file, url, text (got %d)", i, set)
		}
	}
	return &m, nil
}

// Sources resolves the manifest into sources, in manifest order. Relative
// file paths are resolved against baseDir.
func (m *Manifest) Sources(ctx context.Context, baseDir string, maxBytes int64) ([]Source, error) {
	var filePaths []string
	for _, e := range m.Materials {
		if e.File != "" {
			filePaths = append(filePaths, resolvePath(baseDir, e.File))
		}
	}
	files, err := ReadFiles(ctx, filePaths, maxBytes)
	if err != nil {
		return nil, err
	}

	out := make([]Source, 0, len(m.Materials))
	next := 0
	for _, e := range m.Materials {
		switch {
		case e.File != "":
			src := files[next]
			next++
			if e.Name != "" {
				src.Name = e.Name
			}
			out = append(out, src)
		case e.URL != "":
			out = append(out, Source{Kind: SourceURL, Name: e.URL, Content: e.URL})
		default:
			out = append(out, Source{Kind: SourceText, Name: e.Name, Content: e.Text})
		}
	}
	return out, nil
}

// WriteManifest saves the manifest to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
