// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literature-review/pkg/types"
)

func TestAdd_AppendsInOrder(t *testing.T) {
	r := New()
	a, err := r.Add("refs.bib", types.CategoryBibTeX, "X")
	require.NoError(t, err)
	b, err := r.Add("10.123", types.CategoryDOI, "10.123")
	require.NoError(t, err)

	recs := r.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, a.ID, recs[0].ID)
	assert.Equal(t, b.ID, recs[1].ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, types.CategoryBibTeX, recs[0].Category)
}

func TestAdd_RapidAdditionsHaveUniqueIDs(t *testing.T) {
	r := New()
	seen := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		rec, err := r.Add(fmt.Sprintf("m%d", i), types.CategoryPDF, "")
		require.NoError(t, err)
		require.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
	assert.Equal(t, 2000, r.Len())
}

func TestAdd_RegeneratesOnCollision(t *testing.T) {
	orig := newID
	defer func() { newID = orig }()

	ids := []string{"same", "same", "other"}
	newID = func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}

	r := New()
	first, err := r.Add("a", types.CategoryPDF, "")
	require.NoError(t, err)
	second, err := r.Add("b", types.CategoryPDF, "")
	require.NoError(t, err)

	assert.Equal(t, "same", first.ID)
	assert.Equal(t, "other", second.ID)
}

func TestAdd_GivesUpAfterRepeatedCollisions(t *testing.T) {
	orig := newID
	defer func() { newID = orig }()
	newID = func() (string, error) { return "fixed", nil }

	r := New()
	_, err := r.Add("a", types.CategoryPDF, "")
	require.NoError(t, err)
	_, err = r.Add("b", types.CategoryPDF, "")
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestRemove(t *testing.T) {
	r := New()
	a, _ := r.Add("a", types.CategoryPDF, "")
	b, _ := r.Add("b", types.CategoryURL, "https://b.example")
	c, _ := r.Add("c", types.CategoryDOI, "10.1/c")

	assert.True(t, r.Remove(b.ID))
	assert.False(t, r.Remove(b.ID), "second remove is a no-op")
	assert.False(t, r.Remove("missing"))

	recs := r.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, a.ID, recs[0].ID)
	assert.Equal(t, c.ID, recs[1].ID)

	got, ok := r.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, "c", got.DisplayName)
}

func TestAddRemove_RandomSequenceKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := New()
	var model []string

	for step := 0; step < 1000; step++ {
		if len(model) > 0 && rng.Intn(3) == 0 {
			i := rng.Intn(len(model))
			require.True(t, r.Remove(model[i]))
			model = append(model[:i], model[i+1:]...)
		} else {
			rec, err := r.Add("m", types.CategoryPDF, "")
			require.NoError(t, err)
			model = append(model, rec.ID)
		}

		recs := r.Records()
		require.Len(t, recs, len(model))
		seen := make(map[string]bool, len(recs))
		for i, rec := range recs {
			require.False(t, seen[rec.ID])
			seen[rec.ID] = true
			require.Equal(t, model[i], rec.ID)
		}
	}
}

func TestAddFromURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "https", raw: "https://arxiv.org/abs/2301.07041"},
		{name: "http with whitespace", raw: "  http://example.org/paper.pdf "},
		{name: "not a url", raw: "not-a-url", wantErr: true},
		{name: "relative path", raw: "/papers/a.pdf", wantErr: true},
		{name: "scheme without host", raw: "https://", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "bad escape", raw: "http://exa mple.org/%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			rec, err := r.AddFromURL(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidURL)
				assert.Equal(t, 0, r.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.CategoryURL, rec.Category)
			assert.Equal(t, 1, r.Len())
		})
	}
}

func TestRecords_ReturnsCopy(t *testing.T) {
	r := New()
	_, _ = r.Add("a", types.CategoryPDF, "")
	recs := r.Records()
	recs[0].DisplayName = "mutated"
	got := r.Records()
	assert.Equal(t, "a", got[0].DisplayName)
}

func TestClear(t *testing.T) {
	r := New()
	a, _ := r.Add("a", types.CategoryPDF, "")
	r.Clear()
	assert.Equal(t, 0, r.Len())
	_, ok := r.Get(a.ID)
	assert.False(t, ok)
}
