// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry holds the ordered collection of ingested materials for one
// session. Records are only ever appended or removed; iteration order is
// arrival order and is used verbatim when building a submission.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/literature-review/pkg/types"
)

// ErrInvalidURL is returned by AddFromURL when the input is not a
// well-formed absolute URL.
var ErrInvalidURL = errors.New("invalid URL")

// newID generates a record ID. UUIDv7 carries a millisecond timestamp plus
// random bits. Tests substitute it to force collisions.
var newID = func() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Registry is an ordered, identity-keyed collection of MaterialRecords.
// It is not safe for concurrent use; the session controller serializes access.
type Registry struct {
	records []types.MaterialRecord
	index   map[string]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add appends a record with a freshly generated ID and returns it.
func (r *Registry) Add(name string, category types.Category, content string) (types.MaterialRecord, error) {
	id, err := r.uniqueID()
	if err != nil {
		return types.MaterialRecord{}, fmt.Errorf("generating record id: %w", err)
	}

	rec := types.MaterialRecord{
		ID:          id,
		DisplayName: name,
		Category:    category,
		RawContent:  content,
	}
	r.index[id] = len(r.records)
	r.records = append(r.records, rec)
	return rec, nil
}

// AddFromURL admits raw as a url record if it parses as an absolute URL with
// a scheme and host. Nothing is admitted on failure.
func (r *Registry) AddFromURL(raw string) (types.MaterialRecord, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return types.MaterialRecord{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return r.Add(raw, types.CategoryURL, raw)
}

// Remove deletes the record with the given ID. It reports whether a record
// was removed; an unknown ID is a no-op.
func (r *Registry) Remove(id string) bool {
	pos, ok := r.index[id]
	if !ok {
		return false
	}
	r.records = append(r.records[:pos], r.records[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.records); i++ {
		r.index[r.records[i].ID] = i
	}
	return true
}

// Get returns the record with the given ID.
func (r *Registry) Get(id string) (types.MaterialRecord, bool) {
	pos, ok := r.index[id]
	if !ok {
		return types.MaterialRecord{}, false
	}
	return r.records[pos], true
}

// Records returns a copy of the current records in arrival order.
func (r *Registry) Records() []types.MaterialRecord {
	out := make([]types.MaterialRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Clear removes every record.
func (r *Registry) Clear() {
	r.records = nil
	r.index = make(map[string]int)
}

// maxIDAttempts bounds regeneration when a generated ID is already taken.
const maxIDAttempts = 8

func (r *Registry) uniqueID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := newID()
		if err != nil {
			return "", err
		}
		if _, taken := r.index[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unique id after %d attempts", maxIDAttempts)
}
