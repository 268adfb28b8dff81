// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/pdiddy/literature-review/internal/view"
	"github.com/pdiddy/literature-review/pkg/types"
)

const (
	formatProse   = "prose"
	formatJSON    = "json"
	formatTable   = "table"
	formatSummary = "summary"
)

var formats = []string{formatProse, formatJSON, formatTable, formatSummary}

func validFormat(f string) bool { return slices.Contains(formats, f) }

// writeResult prints one view of r to w.
func writeResult(w io.Writer, r *types.CanonicalResult, format string) error {
	r = resultOrEmpty(r)
	var err error
	switch format {
	case formatProse:
		_, err = fmt.Fprintln(w, view.Prose(r))
	case formatJSON:
		_, err = fmt.Fprintln(w, view.Structured(r))
	case formatTable:
		_, err = fmt.Fprintln(w, view.RenderTable(r, 0))
	case formatSummary:
		_, err = fmt.Fprintln(w, view.Summary(r))
		if err == nil {
			if badges := view.RenderBadges(r); badges != "" {
				_, err = fmt.Fprintln(w, badges)
			}
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return err
}

// exportResult writes the prose and structured artifacts that r carries and
// returns their paths. Absent outputs are skipped.
func exportResult(dir string, r *types.CanonicalResult, now time.Time) ([]string, error) {
	var paths []string
	var errs []error
	for _, build := range []func(*types.CanonicalResult, time.Time) (view.Artifact, bool){
		view.ExportProse,
		view.ExportStructured,
	} {
		a, ok := build(r, now)
		if !ok {
			continue
		}
		path, err := view.WriteArtifact(dir, a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, path)
	}
	return paths, errors.Join(errs...)
}
