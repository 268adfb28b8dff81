// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by engine clients.
type HTTPConfig struct {
	// Timeout bounds a single engine call. Zero means no timeout: the call
	// waits until the engine answers.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "literature-review/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for engines backed by a Generative AI API.
type AIConfig struct {
	// Model is the engine-selector identifier sent with every request.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EngineBackend identifies which client talks to the analysis engine.
type EngineBackend string

const (
	BackendHTTP   EngineBackend = "http"
	BackendClaude EngineBackend = "claude"
	BackendGemini EngineBackend = "gemini"
)

// EngineConfig holds settings for the external analysis engine.
type EngineConfig struct {
	HTTPConfig `yaml:",inline"`
	AIConfig   `yaml:",inline"`

	// Backend selects the client: http, claude, or gemini.
	Backend EngineBackend `json:"backend" yaml:"backend"`

	// Endpoint is the URL of the envelope endpoint (http backend only).
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// IngestConfig holds settings for reading materials from disk.
type IngestConfig struct {
	// MaxFileBytes rejects files larger than this (default 10 MiB).
	MaxFileBytes int64 `json:"max_file_bytes" yaml:"max_file_bytes"`
}

// ExportConfig holds settings for writing export artifacts.
type ExportConfig struct {
	// Dir is the directory export files are written to.
	Dir string `json:"dir" yaml:"dir"`
}

// FeedbackConfig holds settings for the "copied" indicator.
type FeedbackConfig struct {
	// Delay is how long a copy indicator stays visible (default 2s).
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// Config groups all settings for one run.
type Config struct {
	Engine   EngineConfig   `json:"engine" yaml:"engine"`
	Ingest   IngestConfig   `json:"ingest" yaml:"ingest"`
	Export   ExportConfig   `json:"export" yaml:"export"`
	Feedback FeedbackConfig `json:"feedback" yaml:"feedback"`
}
