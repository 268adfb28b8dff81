// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate turns an untrusted engine envelope into a canonical
// result. Validation is sequential and stops at the first failing step;
// every step reports its own error so callers can tell them apart.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/literature-review/internal/engine"
	"github.com/pdiddy/literature-review/pkg/types"
)

// genericFailure is shown when the engine reports failure without a message.
const genericFailure = "analysis failed"

var (
	// ErrEngineFailed is matched by every EngineError.
	ErrEngineFailed = errors.New("engine reported failure")

	// ErrNoResponse means the envelope carried no payload.
	ErrNoResponse = errors.New("no response received from the analysis engine")

	// ErrParse means a textual payload was not valid JSON.
	ErrParse = errors.New("could not parse the analysis response")

	// ErrFormat means the payload is not a result object with metadata.
	ErrFormat = errors.New("invalid response format: expected a result object with metadata")
)

// EngineError carries the engine-supplied failure text.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrEngineFailed) match.
func (e *EngineError) Is(target error) bool { return target == ErrEngineFailed }

// ParseError wraps ErrParse. Raw keeps the offending payload for logs; it is
// not part of the user-facing message.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return ErrParse.Error() }

// Unwrap returns both the sentinel and the decoder error.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// Envelope validates env and returns a fresh canonical result. On any error
// the returned result is nil.
func Envelope(env engine.Envelope) (*types.CanonicalResult, error) {
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = genericFailure
		}
		return nil, &EngineError{Message: msg}
	}

	var value json.RawMessage
	switch env.Response.Kind {
	case engine.PayloadAbsent:
		return nil, ErrNoResponse
	case engine.PayloadText:
		if env.Response.Text == "" {
			return nil, ErrNoResponse
		}
		if !json.Valid([]byte(env.Response.Text)) {
			var probe any
			err := json.Unmarshal([]byte(env.Response.Text), &probe)
			return nil, &ParseError{Raw: env.Response.Text, Err: err}
		}
		value = json.RawMessage(env.Response.Text)
	case engine.PayloadStructured:
		value = env.Response.Value
	default:
		return nil, fmt.Errorf("%w: unknown payload kind %d", ErrFormat, env.Response.Kind)
	}

	return Result(value)
}

// Result checks that value is a JSON object with a non-null metadata field
// and decodes it into the canonical shape. Beyond that nothing is required:
// fields of an unexpected type read as zero values instead of rejecting the
// result.
func Result(value json.RawMessage) (*types.CanonicalResult, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || value[0] != '{' {
		return nil, ErrFormat
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	meta, ok := fields["metadata"]
	if !ok || bytes.Equal(bytes.TrimSpace(meta), []byte("null")) {
		return nil, ErrFormat
	}

	var result types.CanonicalResult
	if err := json.Unmarshal(value, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return &result, nil
}
