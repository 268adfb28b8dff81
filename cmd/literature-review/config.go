// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/literature-review/internal/engine"
	"github.com/pdiddy/literature-review/internal/feedback"
	"github.com/pdiddy/literature-review/internal/ingest"
	"github.com/pdiddy/literature-review/pkg/types"
)

const defaultUserAgent = "literature-review/0.1"

// configKeys maps viper keys to the persistent flags that override them.
var configKeys = map[string]string{
	"engine.backend":        "backend",
	"engine.endpoint":       "endpoint",
	"engine.model":          "model",
	"engine.api_key":        "api-key",
	"engine.timeout":        "timeout",
	"engine.max_retries":    "max-retries",
	"ingest.max_file_bytes": "max-file-bytes",
	"export.dir":            "export-dir",
	"feedback.delay":        "copy-feedback",
}

func bindEngineFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("backend", string(types.BackendHTTP), "analysis engine backend: http, claude, or gemini")
	flags.String("endpoint", "", "envelope endpoint URL (http backend)")
	flags.String("model", "", "engine-selector identifier sent with each request")
	flags.String("api-key", "", "engine credential (default: from .secrets/)")
	flags.Duration("timeout", 0, "engine call timeout (0 waits indefinitely)")
	flags.Int("max-retries", 5, "retries on HTTP 429")
	flags.Int64("max-file-bytes", ingest.DefaultMaxFileBytes, "reject material files larger than this")
	flags.String("export-dir", ".", "directory export files are written to")
	flags.Duration("copy-feedback", feedback.DefaultDelay, "how long the copied indicator stays visible")

	for key, flag := range configKeys {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
	viper.SetDefault("engine.user_agent", defaultUserAgent)
}

// loadConfig assembles the run configuration from flags, config file, env,
// and secrets, in that order of precedence.
func loadConfig() (types.Config, error) {
	backend := types.EngineBackend(viper.GetString("engine.backend"))
	switch backend {
	case types.BackendHTTP, types.BackendClaude, types.BackendGemini:
	default:
		return types.Config{}, fmt.Errorf("unknown engine backend %q (want http, claude, or gemini)", backend)
	}

	apiKey := viper.GetString("engine.api_key")
	if apiKey == "" {
		apiKey = loadedSecrets.EngineKey(backend)
	}
	model := viper.GetString("engine.model")
	if model == "" {
		model = engine.DefaultModel
	}

	cfg := types.Config{
		Engine: types.EngineConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("engine.timeout"),
				UserAgent: viper.GetString("engine.user_agent"),
			},
			AIConfig: types.AIConfig{
				Model:      model,
				APIKey:     apiKey,
				MaxRetries: viper.GetInt("engine.max_retries"),
			},
			Backend:  backend,
			Endpoint: viper.GetString("engine.endpoint"),
		},
		Ingest:   types.IngestConfig{MaxFileBytes: viper.GetInt64("ingest.max_file_bytes")},
		Export:   types.ExportConfig{Dir: viper.GetString("export.dir")},
		Feedback: types.FeedbackConfig{Delay: viper.GetDuration("feedback.delay")},
	}
	if cfg.Ingest.MaxFileBytes <= 0 {
		cfg.Ingest.MaxFileBytes = ingest.DefaultMaxFileBytes
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}
	return cfg, nil
}
