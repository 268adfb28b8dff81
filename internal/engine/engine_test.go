// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pdiddy/literature-review/internal/httputil"
	"github.com/pdiddy/literature-review/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// --- envelope decoding ---

func TestEnvelopeUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSuccess bool
		wantError   string
		wantKind    PayloadKind
		wantText    string
		wantValue   string
	}{
		{
			name:     "failure with error text",
			input:    `{"success":false,"error":"quota exceeded"}`,
			wantKind: PayloadAbsent,
		},
		{
			name:        "null response",
			input:       `{"success":true,"response":null}`,
			wantSuccess: true,
			wantKind:    PayloadAbsent,
		},
		{
			name:        "missing response",
			input:       `{"success":true}`,
			wantSuccess: true,
			wantKind:    PayloadAbsent,
		},
		{
			name:        "text response",
			input:       `{"success":true,"response":"{\"metadata\":{}}"}`,
			wantSuccess: true,
			wantKind:    PayloadText,
			wantText:    `{"metadata":{}}`,
		},
		{
			name:        "structured response",
			input:       `{"success":true,"response":{"metadata":{"total_papers":2}}}`,
			wantSuccess: true,
			wantKind:    PayloadStructured,
			wantValue:   `{"metadata":{"total_papers":2}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.input), &env))
			assert.Equal(t, tt.wantSuccess, env.Success)
			assert.Equal(t, tt.wantKind, env.Response.Kind)
			assert.Equal(t, tt.wantText, env.Response.Text)
			if tt.wantValue != "" {
				assert.JSONEq(t, tt.wantValue, string(env.Response.Value))
			}
		})
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	for _, env := range []Envelope{
		{Success: true, Response: TextPayload("hello")},
		{Success: true, Response: StructuredPayload(json.RawMessage(`{"metadata":{}}`))},
		{Success: false, Error: "boom", Response: NoPayload()},
	} {
		data, err := json.Marshal(env)
		require.NoError(t, err)
		var got Envelope
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, env.Success, got.Success)
		assert.Equal(t, env.Error, got.Error)
		assert.Equal(t, env.Response.Kind, got.Response.Kind)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line fence", in: "```{\"a\":1}```", want: `{"a":1}`},
		{name: "whitespace", in: "  \n{\"a\":1}\n ", want: `{"a":1}`},
		{name: "unterminated fence", in: "```json\n{", want: "```json\n{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}

// --- HTTP engine ---

func TestHTTPEngine_Analyze(t *testing.T) {
	var got Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "literature-review/test", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"response":{"metadata":{"total_papers":1}}}`)
	}))
	defer ts.Close()

	e := &HTTPEngine{Endpoint: ts.URL, Token: "tok", UserAgent: "literature-review/test", Client: ts.Client()}
	env, err := e.Analyze(context.Background(), Request{Instruction: "do it", Model: DefaultModel})
	require.NoError(t, err)

	assert.Equal(t, Request{Instruction: "do it", Model: DefaultModel}, got)
	assert.True(t, env.Success)
	assert.Equal(t, PayloadStructured, env.Response.Kind)
}

func TestHTTPEngine_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "down", http.StatusBadGateway)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, "<html>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			e := &HTTPEngine{Endpoint: ts.URL, Client: ts.Client()}
			_, err := e.Analyze(context.Background(), Request{Instruction: "x"})
			assert.Error(t, err)
		})
	}
}

func TestHTTPEngine_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	e := &HTTPEngine{Endpoint: ts.URL, Client: ts.Client()}
	_, err := e.Analyze(ctx, Request{Instruction: "x"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

// --- Claude engine ---

func withClaudeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() {
		claudeAPIURL = old
		ts.Close()
	})
	return ts
}

func TestClaudeEngine_Analyze(t *testing.T) {
	var got claudeRequest
	ts := withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"content":[{"type":"text","text":"`+"```json\\n{\\\"metadata\\\":{}}\\n```"+`"}],"stop_reason":"end_turn"}`)
	})

	c := &ClaudeEngine{APIKey: "key", Client: ts.Client()}
	env, err := c.Analyze(context.Background(), Request{Instruction: "review", Model: DefaultModel})
	require.NoError(t, err)

	assert.Equal(t, defaultClaudeModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "review", got.Messages[0].Content)
	assert.True(t, env.Success)
	assert.Equal(t, PayloadText, env.Response.Kind)
	assert.Equal(t, `{"metadata":{}}`, env.Response.Text)
}

func TestClaudeEngine_ExplicitModel(t *testing.T) {
	var got claudeRequest
	ts := withClaudeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"content":[{"type":"text","text":"{}"}]}`)
	})

	c := &ClaudeEngine{APIKey: "key", Client: ts.Client()}
	_, err := c.Analyze(context.Background(), Request{Instruction: "x", Model: "claude-opus-4-1"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1", got.Model)
}

func TestClaudeEngine_APIErrorBecomesFailedEnvelope(t *testing.T) {
	ts := withClaudeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	})

	c := &ClaudeEngine{APIKey: "bad", Client: ts.Client()}
	env, err := c.Analyze(context.Background(), Request{Instruction: "x"})
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid x-api-key", env.Error)
}

func TestClaudeEngine_UnstructuredErrorIsTransportError(t *testing.T) {
	ts := withClaudeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	c := &ClaudeEngine{APIKey: "key", Client: ts.Client()}
	_, err := c.Analyze(context.Background(), Request{Instruction: "x"})
	assert.ErrorContains(t, err, "502")
}

func TestClaudeEngine_NoTextBlock(t *testing.T) {
	ts := withClaudeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"content":[]}`)
	})

	c := &ClaudeEngine{APIKey: "key", Client: ts.Client()}
	env, err := c.Analyze(context.Background(), Request{Instruction: "x"})
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, PayloadAbsent, env.Response.Kind)
}

// --- Gemini engine ---

type fakeGenerator struct {
	model string
	text  string
	err   error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func TestGeminiEngine_Analyze(t *testing.T) {
	fake := &fakeGenerator{text: `{"metadata":{}}`}
	g := &GeminiEngine{models: fake, logger: zapNop()}

	env, err := g.Analyze(context.Background(), Request{Instruction: "x", Model: DefaultModel})
	require.NoError(t, err)
	assert.Equal(t, defaultGeminiModel, fake.model)
	assert.Equal(t, TextPayload(`{"metadata":{}}`), env.Response)
}

func TestGeminiEngine_CallError(t *testing.T) {
	g := &GeminiEngine{models: &fakeGenerator{err: errors.New("unavailable")}, logger: zapNop()}
	_, err := g.Analyze(context.Background(), Request{Instruction: "x"})
	assert.ErrorContains(t, err, "unavailable")
}

// --- factory ---

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.EngineConfig
		want    any
		wantErr bool
	}{
		{
			name: "http",
			cfg:  types.EngineConfig{Backend: types.BackendHTTP, Endpoint: "http://localhost:8080/analyze"},
			want: &HTTPEngine{},
		},
		{name: "http without endpoint", cfg: types.EngineConfig{Backend: types.BackendHTTP}, wantErr: true},
		{
			name: "claude",
			cfg:  types.EngineConfig{Backend: types.BackendClaude, AIConfig: types.AIConfig{APIKey: "k"}},
			want: &ClaudeEngine{},
		},
		{name: "claude without key", cfg: types.EngineConfig{Backend: types.BackendClaude}, wantErr: true},
		{name: "gemini without key", cfg: types.EngineConfig{Backend: types.BackendGemini}, wantErr: true},
		{name: "unknown", cfg: types.EngineConfig{Backend: "carrier-pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, e)
		})
	}
}

func zapNop() *zap.Logger { return zap.NewNop() }
