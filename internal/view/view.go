// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package view derives every read view and export artifact from the current
// canonical result. All functions are pure: they read the result and never
// cache or mutate it, so views and exports cannot drift apart.
package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/literature-review/pkg/types"
)

// ProsePlaceholder is shown when the result carries no markdown output.
const ProsePlaceholder = "No markdown output available."

// emptyStructured is the structured view when json_output is absent.
const emptyStructured = "{}"

// badgeLimit is how many entries of each statistics list become badges.
const badgeLimit = 3

// exportBase is the fixed stem of every export filename.
const exportBase = "literature-review"

// Columns is the fixed column order of the tabular view.
var Columns = []string{"Paper", "Theme", "Methodology", "Findings", "Gaps", "Year"}

// Prose returns markdown_output verbatim, or the placeholder when absent.
func Prose(r *types.CanonicalResult) string {
	if r == nil || r.MarkdownOutput == "" {
		return ProsePlaceholder
	}
	return r.MarkdownOutput
}

// Structured returns json_output exactly as the engine sent it, indented by
// two spaces, or "{}" when absent.
func Structured(r *types.CanonicalResult) string {
	if !r.HasJSONOutput() {
		return emptyStructured
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.JSONOutput, "", "  "); err != nil {
		// JSONOutput is a member of a decoded object, so it is valid JSON.
		return emptyStructured
	}
	return buf.String()
}

// Table returns one row per comparative analysis entry, in Columns order.
// A missing or empty table yields zero rows.
func Table(r *types.CanonicalResult) [][]string {
	entries := r.Output().ComparativeAnalysisTable
	rows := make([][]string, len(entries))
	for i, row := range entries {
		rows[i] = []string{
			row.Paper,
			row.ResearchTheme,
			row.Methodology,
			row.KeyFindings,
			row.ResearchGaps,
			string(row.Year),
		}
	}
	return rows
}

// Badges holds the summary badges shown above the views.
type Badges struct {
	Themes        []string
	Methodologies []string
}

// Empty reports whether there is nothing to show.
func (b Badges) Empty() bool {
	return len(b.Themes) == 0 && len(b.Methodologies) == 0
}

// SummaryBadges returns the top three research themes and methodologies.
func SummaryBadges(r *types.CanonicalResult) Badges {
	if r == nil {
		return Badges{}
	}
	stats := r.Metadata.SummaryStatistics
	return Badges{
		Themes:        top(stats.ResearchThemes, badgeLimit),
		Methodologies: top(stats.Methodologies, badgeLimit),
	}
}

func top(list []string, n int) []string {
	if len(list) == 0 {
		return nil
	}
	if len(list) > n {
		list = list[:n]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Summary returns a one-line description of the result metadata.
func Summary(r *types.CanonicalResult) string {
	if r == nil {
		return ""
	}
	m := r.Metadata
	parts := []string{fmt.Sprintf("%d paper(s)", m.TotalPapers)}
	if m.SummaryStatistics.YearRange != "" {
		parts = append(parts, "years "+m.SummaryStatistics.YearRange)
	}
	if m.GeneratedDate != "" {
		parts = append(parts, "generated "+m.GeneratedDate)
	}
	return strings.Join(parts, " · ")
}

// Artifact is an export file: its name and exact bytes.
type Artifact struct {
	Name string
	Data []byte
}

// ExportProse returns the prose export. ok is false when markdown_output is
// absent, in which case there is nothing to export.
func ExportProse(r *types.CanonicalResult, now time.Time) (Artifact, bool) {
	if r == nil || r.MarkdownOutput == "" {
		return Artifact{}, false
	}
	return Artifact{Name: FileName(now, "md"), Data: []byte(Prose(r))}, true
}

// ExportStructured returns the structured export. ok is false when
// json_output is absent.
func ExportStructured(r *types.CanonicalResult, now time.Time) (Artifact, bool) {
	if !r.HasJSONOutput() {
		return Artifact{}, false
	}
	return Artifact{Name: FileName(now, "json"), Data: []byte(Structured(r))}, true
}

// FileName returns "literature-review-YYYY-MM-DD.ext" for the date of now.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", exportBase, now.Format("2006-01-02"), ext)
}

// WriteArtifact writes a to dir and returns the written path.
func WriteArtifact(dir string, a Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, a.Name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
