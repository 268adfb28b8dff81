// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the mutable state of one review session: the material
// registry, the pending URL input, the canonical result, the busy flag, and
// the current error. State changes only through the Controller's named
// transitions; the controller is not safe for concurrent use and expects a
// single event loop to drive it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/internal/classify"
	"github.com/pdiddy/literature-review/internal/engine"
	"github.com/pdiddy/literature-review/internal/registry"
	"github.com/pdiddy/literature-review/internal/submit"
	"github.com/pdiddy/literature-review/internal/validate"
	"github.com/pdiddy/literature-review/pkg/types"
)

// State is a read-only snapshot of the session.
type State struct {
	Records  []types.MaterialRecord
	URLInput string
	Result   *types.CanonicalResult
	Busy     bool
	Err      error
}

// Controller is the single owner of session state.
type Controller struct {
	registry *registry.Registry
	urlInput string
	result   *types.CanonicalResult
	busy     bool
	err      error
	seq      uint64

	model  string
	logger *zap.Logger
}

// New returns an empty session that sends model as the engine selector.
func New(model string, logger *zap.Logger) *Controller {
	if model == "" {
		model = engine.DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		registry: registry.New(),
		model:    model,
		logger:   logger,
	}
}

// State returns a snapshot. Records is a copy; Result is shared but is
// never mutated after it becomes current.
func (c *Controller) State() State {
	return State{
		Records:  c.registry.Records(),
		URLInput: c.urlInput,
		Result:   c.result,
		Busy:     c.busy,
		Err:      c.err,
	}
}

// Result returns the current canonical result, or nil.
func (c *Controller) Result() *types.CanonicalResult { return c.result }

// Err returns the error currently shown to the user, or nil.
func (c *Controller) Err() error { return c.err }

// Busy reports whether an analysis is in flight.
func (c *Controller) Busy() bool { return c.busy }

// AddMaterial classifies content and appends it to the registry. filename
// and declaredType describe where the content came from and drive
// classification; name is only the display name, defaulting to filename and
// then to a preview of the content.
func (c *Controller) AddMaterial(name, filename, declaredType, content string) (types.MaterialRecord, error) {
	category := classify.Classify(content, filename, declaredType)
	if name == "" {
		name = filename
	}
	if name == "" {
		name = preview(content)
	}
	rec, err := c.registry.Add(name, category, content)
	if err != nil {
		c.setErr(err)
		return types.MaterialRecord{}, err
	}
	c.logger.Debug("material added",
		zap.String("id", rec.ID),
		zap.String("name", rec.DisplayName),
		zap.String("category", string(rec.Category)))
	return rec, nil
}

// SetURLInput replaces the pending URL input buffer.
func (c *Controller) SetURLInput(s string) { c.urlInput = s }

// SubmitURL admits the buffered URL if it is well formed. The buffer is
// cleared either way; a malformed URL is dropped without surfacing an error.
func (c *Controller) SubmitURL() (types.MaterialRecord, bool) {
	raw := c.urlInput
	c.urlInput = ""

	rec, err := c.registry.AddFromURL(raw)
	if err != nil {
		c.logger.Debug("url input dropped", zap.String("input", raw), zap.Error(err))
		return types.MaterialRecord{}, false
	}
	c.logger.Debug("url added", zap.String("id", rec.ID), zap.String("url", rec.RawContent))
	return rec, true
}

// Remove deletes a record by ID; unknown IDs are ignored.
func (c *Controller) Remove(id string) bool {
	removed := c.registry.Remove(id)
	if removed {
		c.logger.Debug("material removed", zap.String("id", id))
	}
	return removed
}

// Submission is a captured engine request plus the sequence number that
// ties its completion back to this submit.
type Submission struct {
	Seq     uint64
	Request engine.Request
}

// BeginSubmit captures the current registry as an engine request and marks
// the session busy. Later registry edits do not affect the captured request.
func (c *Controller) BeginSubmit() (Submission, error) {
	if c.busy {
		return Submission{}, ErrBusy
	}

	payload, err := submit.Build(c.registry.Records())
	if err != nil {
		c.setErr(err)
		return Submission{}, err
	}
	instruction, err := submit.Instruction(payload)
	if err != nil {
		err = fmt.Errorf("rendering instruction: %w", err)
		c.setErr(err)
		return Submission{}, err
	}

	c.busy = true
	c.err = nil
	c.seq++
	c.logger.Info("submitting materials",
		zap.Uint64("seq", c.seq),
		zap.Int("materials", c.registry.Len()),
		zap.String("model", c.model))
	return Submission{
		Seq:     c.seq,
		Request: engine.Request{Instruction: instruction, Model: c.model},
	}, nil
}

// CompleteSubmit finishes the in-flight analysis identified by seq. A call
// error becomes a TransportError; otherwise the envelope is validated. Only a
// fully valid result replaces the current one; on failure the previous
// result stays. Completions for a submission abandoned by Reset return
// ErrNotSubmitted and change nothing.
func (c *Controller) CompleteSubmit(seq uint64, env engine.Envelope, callErr error) error {
	if !c.busy || seq != c.seq {
		c.logger.Debug("ignoring stale completion", zap.Uint64("seq", seq))
		return ErrNotSubmitted
	}
	c.busy = false

	if callErr != nil {
		err := &TransportError{Err: callErr}
		c.logger.Warn("engine call failed", zap.Error(callErr))
		c.setErr(err)
		return err
	}

	result, err := validate.Envelope(env)
	if err != nil {
		var pe *validate.ParseError
		if errors.As(err, &pe) {
			c.logger.Warn("engine payload is not JSON", zap.String("raw", pe.Raw), zap.Error(pe.Err))
		} else {
			c.logger.Warn("engine response rejected", zap.Error(err))
		}
		c.setErr(err)
		return err
	}

	c.result = result
	c.err = nil
	c.logger.Info("analysis complete", zap.Int("papers", result.Metadata.TotalPapers))
	return nil
}

// Analyze runs a full submit cycle against eng.
func (c *Controller) Analyze(ctx context.Context, eng engine.Engine) error {
	sub, err := c.BeginSubmit()
	if err != nil {
		return err
	}
	env, callErr := eng.Analyze(ctx, sub.Request)
	return c.CompleteSubmit(sub.Seq, env, callErr)
}

// DismissError clears the current error.
func (c *Controller) DismissError() { c.err = nil }

// Reset clears materials, input, result, and error. An in-flight call is not
// cancelled; its completion is ignored because the sequence moves on.
func (c *Controller) Reset() {
	c.registry.Clear()
	c.urlInput = ""
	c.result = nil
	c.err = nil
	c.busy = false
	c.seq++
	c.logger.Debug("session reset")
}

// setErr makes err the one error shown, replacing any earlier one.
func (c *Controller) setErr(err error) { c.err = err }

// previewLen bounds display names derived from pasted content.
const previewLen = 48

// preview derives a display name from the first line of content.
func preview(content string) string {
	content = strings.TrimSpace(content)
	line := content
	for i, r := range content {
		if r == '\n' || r == '\r' {
			line = content[:i]
			break
		}
	}
	runes := []rune(line)
	if len(runes) > previewLen {
		return string(runes[:previewLen]) + "…"
	}
	if len(runes) == 0 {
		return "(empty)"
	}
	return line
}
