// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the literature-review tool:
// ingested materials, the canonical analysis result, and stage configuration.
package types

import "strings"

// Category is the fixed set of material kinds a record can be classified as.
type Category string

const (
	CategoryPDF    Category = "pdf"
	CategoryBibTeX Category = "bibtex"
	CategoryDOI    Category = "doi"
	CategoryURL    Category = "url"
)

// Categories lists every valid category.
var Categories = []Category{CategoryPDF, CategoryBibTeX, CategoryDOI, CategoryURL}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the upper-cased tag used in submission payloads (e.g. "BIBTEX").
func (c Category) Label() string {
	return strings.ToUpper(string(c))
}

// MaterialRecord is one ingested reference unit. Records are immutable once
// created; the registry only adds and removes them.
type MaterialRecord struct {
	// ID is unique within a registry and opaque to callers.
	ID string `json:"id" yaml:"id"`

	// DisplayName is what the user sees: a filename, URL, or content preview.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Category is fixed at creation time.
	Category Category `json:"category" yaml:"category"`

	// RawContent is submitted verbatim to the engine.
	RawContent string `json:"raw_content" yaml:"raw_content"`
}
