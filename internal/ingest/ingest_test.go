// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literature-review/internal/session"
	"github.com/pdiddy/literature-review/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFiles_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"c.bib", "a.pdf", "b.txt", "d.docx"} {
		paths = append(paths, writeFile(t, dir, name, strings.Repeat("x", i+1)))
	}

	got, err := ReadFiles(context.Background(), paths, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, "c.bib", got[0].Name)
	assert.Equal(t, "x", got[0].Content)
	assert.Equal(t, "a.pdf", got[1].Name)
	assert.Equal(t, "application/pdf", got[1].DeclaredType)
	assert.Equal(t, "text/plain", got[2].DeclaredType)
	assert.Equal(t, "d.docx", got[3].Name)
	for _, src := range got {
		assert.Equal(t, SourceFile, src.Kind)
	}
}

func TestReadFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	big := writeFile(t, dir, "big.pdf", strings.Repeat("x", 100))

	_, err := ReadFiles(context.Background(), []string{big}, 10)
	assert.ErrorContains(t, err, "larger than 10 bytes")

	_, err = ReadFiles(context.Background(), []string{filepath.Join(dir, "missing.pdf")}, 0)
	assert.Error(t, err)
}

func TestReadFiles_Empty(t *testing.T) {
	got, err := ReadFiles(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsAccepted(t *testing.T) {
	assert.True(t, IsAccepted("paper.PDF"))
	assert.True(t, IsAccepted("refs.bib"))
	assert.True(t, IsAccepted("notes.txt"))
	assert.False(t, IsAccepted("paper.docx"))
}

func TestFromArgs(t *testing.T) {
	dir := t.TempDir()
	bib := writeFile(t, dir, "refs.bib", "@article{a}")

	got, err := FromArgs(context.Background(), []string{
		"10.1145/3442188.3445922",
		bib,
		"https://arxiv.org/abs/1706.03762",
		"not a url://really",
	}, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, SourceText, got[0].Kind)
	assert.Equal(t, SourceFile, got[1].Kind)
	assert.Equal(t, "@article{a}", got[1].Content)
	assert.Equal(t, SourceURL, got[2].Kind)
	assert.Equal(t, SourceText, got[3].Kind)
}

func TestManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "refs.bib", "@book{b}")
	manifestPath := writeFile(t, dir, "batch.yaml", `materials:
  - text: "10.1000/182"
  - file: refs.bib
    name: My references
  - url: https://example.org/paper
`)

	m, err := ReadManifest(manifestPath)
	require.NoError(t, err)
	sources, err := m.Sources(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Len(t, sources, 3)

	assert.Equal(t, Source{Kind: SourceText, Content: "10.1000/182"}, sources[0])
	assert.Equal(t, "My references", sources[1].Name)
	assert.Equal(t, "refs.bib", sources[1].Filename)
	assert.Equal(t, "@book{b}", sources[1].Content)
	assert.Equal(t, SourceURL, sources[2].Kind)
}

func TestManifest_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	want := &Manifest{Materials: []ManifestEntry{{URL: "https://a.example"}, {Text: "10.1/x", Name: "x"}}}
	require.NoError(t, WriteManifest(path, want))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{name: "two kinds", content: "materials:\n  - text: a\n    url: https://b.example\n"},
		{name: "none set", content: "materials:\n  - name: lonely\n"},
		{name: "bad yaml", content: "materials: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml", tt.content)
			_, err := ReadManifest(path)
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	ctrl := session.New("", nil)
	added, err := Apply(ctrl, []Source{
		{Kind: SourceFile, Name: "refs.bib", Filename: "refs.bib", DeclaredType: "application/x-bibtex", Content: "X"},
		{Kind: SourceText, Content: "10.123"},
		{Kind: SourceURL, Content: "not-a-url"},
		{Kind: SourceURL, Content: "https://example.org"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	recs := ctrl.State().Records
	require.Len(t, recs, 3)
	assert.Equal(t, types.CategoryBibTeX, recs[0].Category)
	assert.Equal(t, types.CategoryDOI, recs[1].Category)
	assert.Equal(t, types.CategoryURL, recs[2].Category)
	assert.Empty(t, ctrl.State().URLInput)
}

func TestApply_DisplayNameDoesNotChangeCategory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "refs.bib", "@book{b}")
	manifestPath := writeFile(t, dir, "batch.yaml", `materials:
  - file: refs.bib
    name: My references
  - file: refs.bib
  - text: "10.1000/182"
    name: notes.txt
`)
	m, err := ReadManifest(manifestPath)
	require.NoError(t, err)
	sources, err := m.Sources(context.Background(), dir, 0)
	require.NoError(t, err)

	ctrl := session.New("", nil)
	added, err := Apply(ctrl, sources)
	require.NoError(t, err)
	require.Equal(t, 3, added)

	recs := ctrl.State().Records
	tests := []struct {
		name     string
		category types.Category
	}{
		{name: "My references", category: types.CategoryBibTeX},
		{name: "refs.bib", category: types.CategoryBibTeX},
		{name: "notes.txt", category: types.CategoryDOI},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.name, recs[i].DisplayName)
		assert.Equal(t, tt.category, recs[i].Category, "record %q", tt.name)
	}
}
