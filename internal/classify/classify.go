// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify maps raw, untyped material input to a category.
//
// Classification is an ordered rule table evaluated top to bottom; the first
// matching rule decides. Only cheap string checks are made: no content
// sniffing and no network access.
package classify

import (
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/literature-review/pkg/types"
)

// Input is what the classifier sees for one material.
type Input struct {
	Content      string
	Filename     string
	DeclaredType string
}

// Rule pairs a predicate with the category it assigns.
type Rule struct {
	Name     string
	Match    func(Input) bool
	Category types.Category
}

// bibliographyExts are the filename extensions treated as bibliography text.
var bibliographyExts = map[string]bool{
	".bib": true,
	".txt": true,
}

// pdfTypes are declared content types that mark a PDF.
var pdfTypes = map[string]bool{
	"application/pdf":   true,
	"application/x-pdf": true,
}

// doiPrefix matches the start of a DOI: "10." followed by digits.
var doiPrefix = regexp.MustCompile(`^10\.\d+`)

// rules is evaluated in order. The final rule always matches.
var rules = []Rule{
	{
		Name: "bibliography file or plain text",
		Match: func(in Input) bool {
			ext := strings.ToLower(filepath.Ext(in.Filename))
			return bibliographyExts[ext] || mediaType(in.DeclaredType) == "text/plain"
		},
		Category: types.CategoryBibTeX,
	},
	{
		Name: "declared pdf",
		Match: func(in Input) bool {
			return pdfTypes[mediaType(in.DeclaredType)]
		},
		Category: types.CategoryPDF,
	},
	{
		Name: "url",
		Match: func(in Input) bool {
			return strings.HasPrefix(strings.TrimSpace(in.Content), "http")
		},
		Category: types.CategoryURL,
	},
	{
		Name: "doi",
		Match: func(in Input) bool {
			return doiPrefix.MatchString(strings.TrimSpace(in.Content))
		},
		Category: types.CategoryDOI,
	},
	{
		Name:     "fallback",
		Match:    func(Input) bool { return true },
		Category: types.CategoryPDF,
	},
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the category of a material. Empty input falls through to
// the pdf fallback.
func Classify(content, filename, declaredType string) types.Category {
	return ClassifyInput(Input{Content: content, Filename: filename, DeclaredType: declaredType})
}

// ClassifyInput is Classify over an Input value.
func ClassifyInput(in Input) types.Category {
	for _, r := range rules {
		if r.Match(in) {
			return r.Category
		}
	}
	return types.CategoryPDF
}

// mediaType strips parameters such as "; charset=utf-8" and lower-cases the type.
func mediaType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(declared)
	}
	return mt
}
