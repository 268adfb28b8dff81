// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package submit serializes registry records into the single request payload
// sent to the analysis engine.
package submit

import (
	"bytes"
	"errors"
	"strings"
	"text/template"

	"github.com/pdiddy/literature-review/pkg/types"
)

// ErrNothingToSubmit is returned when there are no records to submit.
var ErrNothingToSubmit = errors.New("no materials to analyze: add at least one PDF, BibTeX entry, DOI, or URL")

// recordSeparator is placed between formatted records.
const recordSeparator = "\n\n"

// Build formats every record, in order, as "[CATEGORY]: content" and joins
// them with a blank line. An empty record list is an error; nothing is
// partially built.
func Build(records []types.MaterialRecord) (string, error) {
	if len(records) == 0 {
		return "", ErrNothingToSubmit
	}

	parts := make([]string, len(records))
	for i, rec := range records {
		parts[i] = "[" + rec.Category.Label() + "]: " + rec.RawContent
	}
	return strings.Join(parts, recordSeparator), nil
}

// instructionTmpl wraps the formatted materials in the fixed task description.
var instructionTmpl = template.Must(template.New("instruction").Parse(`You are a literature review assistant. Analyze the research materials below and produce a structured literature review.

Materials are listed one per block, each tagged with its kind: [PDF], [BIBTEX], [DOI], or [URL].

Respond with a single JSON object and nothing else. The object must have this shape:
{
  "status": "success",
  "metadata": {
    "total_papers": <int>,
    "generated_date": "<YYYY-MM-DD>",
    "summary_statistics": {
      "year_range": "<earliest>-<latest>",
      "research_themes": ["..."],
      "methodologies": ["..."]
    }
  },
  "markdown_output": "<the full review in Markdown>",
  "json_output": {
    "papers": [
      {"title": "", "authors": [""], "year": 0, "journal": "", "doi": "", "url": "", "abstract": "", "summary_150_words": ""}
    ],
    "comparative_analysis_table": [
      {"paper": "", "research_theme": "", "methodology": "", "key_findings": "", "research_gaps": "", "year": 0}
    ]
  },
  "confidence": <float between 0 and 1>,
  "processing_notes": "<anything the reader should know about gaps in the input>"
}

The "metadata" field is required. Write a summary of about 150 words for every paper.

Research materials:

{{.Materials}}
`))

// Instruction renders the engine instruction around a built payload.
func Instruction(payload string) (string, error) {
	var buf bytes.Buffer
	if err := instructionTmpl.Execute(&buf, struct{ Materials string }{Materials: payload}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
