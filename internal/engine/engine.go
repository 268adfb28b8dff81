// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine talks to the external literature-analysis engine. Every
// backend returns the same response envelope, whose payload is resolved into
// a tagged union once, at decode time.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/pkg/types"
)

// DefaultModel is the engine-selector identifier used when none is configured.
const DefaultModel = "literature-review"

// Request is one analysis call: the rendered instruction and the engine selector.
type Request struct {
	Instruction string `json:"instruction"`
	Model       string `json:"model"`
}

// Engine abstracts the analysis service so tests can supply a fake.
// A returned error means the call itself failed; engine-level failures are
// reported through Envelope.Success.
type Engine interface {
	Analyze(ctx context.Context, req Request) (Envelope, error)
}

// PayloadKind tags which variant of Payload is populated.
type PayloadKind int

const (
	PayloadAbsent PayloadKind = iota
	PayloadText
	PayloadStructured
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadText:
		return "text"
	case PayloadStructured:
		return "structured"
	default:
		return "absent"
	}
}

// Payload is the envelope's response field: absent, pre-serialized text, or
// an already-structured JSON value.
type Payload struct {
	Kind  PayloadKind
	Text  string
	Value json.RawMessage
}

// NoPayload returns an absent payload.
func NoPayload() Payload { return Payload{Kind: PayloadAbsent} }

// TextPayload returns a textual payload that still needs deserializing.
func TextPayload(s string) Payload { return Payload{Kind: PayloadText, Text: s} }

// StructuredPayload returns an already-structured payload.
func StructuredPayload(v json.RawMessage) Payload {
	return Payload{Kind: PayloadStructured, Value: v}
}

// Envelope is the engine's reply: {success, error?, response}.
type Envelope struct {
	Success  bool
	Error    string
	Response Payload
}

type envelopeJSON struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error,omitempty"`
	Response json.RawMessage `json:"response"`
}

// UnmarshalJSON decodes an envelope and resolves the response variant.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Success = raw.Success
	e.Error = raw.Error

	body := bytes.TrimSpace(raw.Response)
	switch {
	case len(body) == 0 || bytes.Equal(body, []byte("null")):
		e.Response = NoPayload()
	case body[0] == '"':
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return fmt.Errorf("decoding text response: %w", err)
		}
		e.Response = TextPayload(s)
	default:
		e.Response = StructuredPayload(append(json.RawMessage(nil), body...))
	}
	return nil
}

// MarshalJSON encodes the envelope back into its wire form.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := envelopeJSON{Success: e.Success, Error: e.Error}
	switch e.Response.Kind {
	case PayloadText:
		b, err := json.Marshal(e.Response.Text)
		if err != nil {
			return nil, err
		}
		out.Response = b
	case PayloadStructured:
		out.Response = e.Response.Value
	default:
		out.Response = json.RawMessage("null")
	}
	return json.Marshal(out)
}

// New builds the engine client selected by cfg.Backend.
func New(cfg types.EngineConfig, logger *zap.Logger) (Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Backend {
	case types.BackendHTTP, "":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("engine endpoint is required for the http backend")
		}
		return &HTTPEngine{
			Endpoint:   cfg.Endpoint,
			Token:      cfg.APIKey,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.MaxRetries,
			Client:     client,
			Logger:     logger,
		}, nil
	case types.BackendClaude:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("an Anthropic API key is required for the claude backend")
		}
		return &ClaudeEngine{
			APIKey:     cfg.APIKey,
			MaxRetries: cfg.MaxRetries,
			Client:     client,
			Logger:     logger,
		}, nil
	case types.BackendGemini:
		return NewGeminiEngine(context.Background(), cfg.APIKey, client, logger)
	default:
		return nil, fmt.Errorf("unknown engine backend %q (want http, claude, or gemini)", cfg.Backend)
	}
}
