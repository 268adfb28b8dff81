// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns files, batch manifests, and command-line arguments
// into materials for a session.
package ingest

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/literature-review/pkg/types"
)

// DefaultMaxFileBytes bounds the size of a single ingested file.
const DefaultMaxFileBytes = 10 << 20

// readConcurrency bounds how many files are read at once.
const readConcurrency = 8

// AcceptedExtensions lists the bulk-upload extensions offered to users.
// Other extensions are still accepted and default-classified.
var AcceptedExtensions = []string{".pdf", ".bib", ".txt"}

// declaredTypes maps accepted extensions to the content type a browser file
// object would declare. Other extensions fall back to the system mime table.
var declaredTypes = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain",
	".bib": "application/x-bibtex",
}

// SourceKind tells how a Source is admitted to the session.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceURL
	SourceText
)

// Source is one material waiting to be added to a session.
type Source struct {
	Kind SourceKind

	// Name is the display name. Filename is the base name of the file the
	// content was read from, empty for URLs and pasted text; only Filename
	// and DeclaredType take part in classification.
	Name         string
	Filename     string
	DeclaredType string
	Content      string
}

// Sink is the subset of the session controller ingestion feeds.
type Sink interface {
	AddMaterial(name, filename, declaredType, content string) (types.MaterialRecord, error)
	SetURLInput(s string)
	SubmitURL() (types.MaterialRecord, bool)
}

// DeclaredType returns the content type declared for a filename.
func DeclaredType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := declaredTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

// IsAccepted reports whether filename has one of AcceptedExtensions.
func IsAccepted(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range AcceptedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// ReadFiles reads paths concurrently and returns one file Source per path,
// in argument order. Files larger than maxBytes are rejected; maxBytes <= 0
// uses DefaultMaxFileBytes.
func ReadFiles(ctx context.Context, paths []string, maxBytes int64) ([]Source, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	out := make([]Source, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := readLimited(path, maxBytes)
			if err != nil {
				return err
			}
			name := filepath.Base(path)
			out[i] = Source{
				Kind:         SourceFile,
				Name:         name,
				Filename:     name,
				DeclaredType: DeclaredType(name),
				Content:      content,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readLimited(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%s is larger than %d bytes", path, maxBytes)
	}
	return string(data), nil
}

// Apply adds sources to sink in order. It returns how many were admitted;
// malformed URLs are dropped the same way the interactive URL input drops them.
func Apply(sink Sink, sources []Source) (int, error) {
	added := 0
	for _, src := range sources {
		switch src.Kind {
		case SourceURL:
			sink.SetURLInput(src.Content)
			if _, ok := sink.SubmitURL(); ok {
				added++
			}
		default:
			if _, err := sink.AddMaterial(src.Name, src.Filename, src.DeclaredType, src.Content); err != nil {
				return added, fmt.Errorf("adding %s: %w", src.Name, err)
			}
			added++
		}
	}
	return added, nil
}
