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

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// defaultClaudeModel is used when the request names the generic engine selector.
const defaultClaudeModel = "claude-sonnet-4-5-20250929"

// claudeMaxTokens leaves room for a full review plus its JSON tables.
const claudeMaxTokens = 16000

// ClaudeEngine runs the analysis through the Claude Messages API and wraps
// the model's text in a successful envelope.
type ClaudeEngine struct {
	APIKey     string
	MaxRetries int
	Client     *http.Client
	Logger     *zap.Logger
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze sends the instruction as a single user message.
func (c *ClaudeEngine) Analyze(ctx context.Context, req Request) (Envelope, error) {
	model := req.Model
	if model == "" || model == DefaultModel {
		model = defaultClaudeModel
	}

	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     model,
		MaxTokens: claudeMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: req.Instruction}},
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Envelope{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("calling Claude API", zap.String("model", model))

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries, logger)
	if err != nil {
		return Envelope{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	// API-level rejections (bad key, invalid request) are engine failures,
	// not transport failures: report them through the envelope.
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr claudeError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return Envelope{Success: false, Error: apiErr.Error.Message}, nil
		}
		return Envelope{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return Envelope{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		if cResp.StopReason == "max_tokens" {
			logger.Warn("Claude response truncated at max_tokens")
		}
		return Envelope{Success: true, Response: TextPayload(stripCodeFence(block.Text))}, nil
	}

	return Envelope{Success: true, Response: NoPayload()}, nil
}
