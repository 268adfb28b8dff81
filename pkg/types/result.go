// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
)

// CanonicalResult is the single structured analysis outcome returned by the
// engine. Metadata is required; everything else is optional. A result is
// replaced wholesale, never edited in place.
//
// Decoding is lenient: a field whose JSON type does not match is read as its
// zero value instead of failing the whole result. JSONOutput keeps the
// engine's bytes as sent; Output derives the typed projection from them.
type CanonicalResult struct {
	Status          string          `json:"status,omitempty"`
	Metadata        Metadata        `json:"metadata"`
	MarkdownOutput  string          `json:"markdown_output,omitempty"`
	JSONOutput      json.RawMessage `json:"json_output,omitempty"`
	Confidence      float64         `json:"confidence,omitempty"`
	ProcessingNotes string          `json:"processing_notes,omitempty"`
	Model           string          `json:"model,omitempty"`
	Temperature     float64         `json:"temperature,omitempty"`
}

// UnmarshalJSON decodes a result object field by field. Non-object input
// leaves r zero.
func (r *CanonicalResult) UnmarshalJSON(data []byte) error {
	f := objectFields(data)
	*r = CanonicalResult{
		Status:          text(f["status"]),
		MarkdownOutput:  text(f["markdown_output"]),
		Confidence:      number(f["confidence"]),
		ProcessingNotes: text(f["processing_notes"]),
		Model:           text(f["model"]),
		Temperature:     number(f["temperature"]),
	}
	r.Metadata = decodeMetadata(f["metadata"])
	if raw := bytes.TrimSpace(f["json_output"]); len(raw) > 0 && !isNull(raw) {
		r.JSONOutput = append(json.RawMessage(nil), raw...)
	}
	return nil
}

// HasJSONOutput reports whether the engine sent a json_output section.
func (r *CanonicalResult) HasJSONOutput() bool {
	return r != nil && len(r.JSONOutput) > 0
}

// Output returns the typed projection of JSONOutput. Entries that are not
// objects and fields of the wrong type read as zero values.
func (r *CanonicalResult) Output() JSONOutput {
	if !r.HasJSONOutput() {
		return JSONOutput{}
	}
	f := objectFields(r.JSONOutput)
	return JSONOutput{
		Papers:                   objectList(f["papers"], decodePaper),
		ComparativeAnalysisTable: objectList(f["comparative_analysis_table"], decodeRow),
	}
}

// Metadata summarizes the analyzed batch.
type Metadata struct {
	TotalPapers       int               `json:"total_papers"`
	GeneratedDate     string            `json:"generated_date"`
	SummaryStatistics SummaryStatistics `json:"summary_statistics"`
}

// SummaryStatistics holds the aggregate lists shown as badges.
type SummaryStatistics struct {
	YearRange      string   `json:"year_range"`
	ResearchThemes []string `json:"research_themes"`
	Methodologies  []string `json:"methodologies"`
}

func decodeMetadata(raw json.RawMessage) Metadata {
	f := objectFields(raw)
	s := objectFields(f["summary_statistics"])
	return Metadata{
		TotalPapers:   count(f["total_papers"]),
		GeneratedDate: text(f["generated_date"]),
		SummaryStatistics: SummaryStatistics{
			YearRange:      text(s["year_range"]),
			ResearchThemes: textList(s["research_themes"]),
			Methodologies:  textList(s["methodologies"]),
		},
	}
}

// JSONOutput is the typed view of the structured half of the result.
type JSONOutput struct {
	Papers                   []Paper `json:"papers"`
	ComparativeAnalysisTable []Row   `json:"comparative_analysis_table"`
}

// Paper is one analyzed paper as described by the engine.
type Paper struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     Year     `json:"year"`
	Journal  string   `json:"journal"`
	DOI      string   `json:"doi"`
	URL      string   `json:"url"`
	Abstract string   `json:"abstract"`

	// Summary is the engine's 150-word summary of the paper.
	Summary string `json:"summary_150_words"`
}

func decodePaper(f map[string]json.RawMessage) Paper {
	return Paper{
		Title:    text(f["title"]),
		Authors:  textList(f["authors"]),
		Year:     Year(text(f["year"])),
		Journal:  text(f["journal"]),
		DOI:      text(f["doi"]),
		URL:      text(f["url"]),
		Abstract: text(f["abstract"]),
		Summary:  text(f["summary_150_words"]),
	}
}

// Row is one line of the comparative analysis table.
type Row struct {
	Paper         string `json:"paper"`
	ResearchTheme string `json:"research_theme"`
	Methodology   string `json:"methodology"`
	KeyFindings   string `json:"key_findings"`
	ResearchGaps  string `json:"research_gaps"`
	Year          Year   `json:"year"`
}

func decodeRow(f map[string]json.RawMessage) Row {
	return Row{
		Paper:         text(f["paper"]),
		ResearchTheme: text(f["research_theme"]),
		Methodology:   text(f["methodology"]),
		KeyFindings:   text(f["key_findings"]),
		ResearchGaps:  text(f["research_gaps"]),
		Year:          Year(text(f["year"])),
	}
}

// Year is a publication year. Engines send it as a number or a string, so it
// decodes from either and is kept in textual form.
type Year string

// UnmarshalJSON accepts a JSON number or string; anything else reads as "".
func (y *Year) UnmarshalJSON(data []byte) error {
	*y = Year(text(data))
	return nil
}
