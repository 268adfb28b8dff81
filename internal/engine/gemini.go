// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-pro"

// geminiGenerator is the slice of the genai Models service the engine uses.
type geminiGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiEngine runs the analysis through Google's Gemini API and wraps the
// model's JSON text in a successful envelope.
type GeminiEngine struct {
	models geminiGenerator
	logger *zap.Logger
}

// NewGeminiEngine creates a Gemini-backed engine.
func NewGeminiEngine(ctx context.Context, apiKey string, httpClient *http.Client, logger *zap.Logger) (*GeminiEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("a Gemini API key is required for the gemini backend")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiEngine{models: client.Models, logger: logger}, nil
}

// Analyze sends the instruction and asks for a JSON response.
func (g *GeminiEngine) Analyze(ctx context.Context, req Request) (Envelope, error) {
	model := req.Model
	if model == "" || model == DefaultModel {
		model = defaultGeminiModel
	}

	g.logger.Debug("calling Gemini API", zap.String("model", model))

	result, err := g.models.GenerateContent(ctx, model,
		genai.Text(req.Instruction),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return Envelope{}, fmt.Errorf("calling Gemini API: %w", err)
	}

	text := result.Text()
	if text == "" {
		return Envelope{Success: true, Response: NoPayload()}, nil
	}
	return Envelope{Success: true, Response: TextPayload(stripCodeFence(text))}, nil
}
