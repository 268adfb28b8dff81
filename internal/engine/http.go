// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/internal/httputil"
)

// maxErrorBody bounds how much of a failed response body ends up in an error.
const maxErrorBody = 512

// HTTPEngine posts the request to an endpoint that answers with the
// {success, error, response} envelope directly.
type HTTPEngine struct {
	Endpoint   string
	Token      string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
	Logger     *zap.Logger
}

// Analyze sends one request and decodes the envelope.
func (e *HTTPEngine) Analyze(ctx context.Context, req Request) (Envelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Envelope{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if e.UserAgent != "" {
		httpReq.Header.Set("User-Agent", e.UserAgent)
	}
	if e.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.Token)
	}

	logger := e.logger()
	logger.Debug("calling analysis engine",
		zap.String("endpoint", e.Endpoint),
		zap.String("model", req.Model),
		zap.Int("instruction_bytes", len(req.Instruction)))

	resp, err := httputil.DoWithRetry(ctx, e.client(), httpReq, e.MaxRetries, logger)
	if err != nil {
		return Envelope{}, fmt.Errorf("calling engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Envelope{}, fmt.Errorf("engine returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("decoding engine envelope: %w", err)
	}

	logger.Debug("engine replied",
		zap.Bool("success", env.Success),
		zap.Stringer("payload", env.Response.Kind))
	return env, nil
}

func (e *HTTPEngine) client() *http.Client {
	if e.Client == nil {
		return http.DefaultClient
	}
	return e.Client
}

func (e *HTTPEngine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
