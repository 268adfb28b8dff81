// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves engine credentials. Each file in a secrets
// directory holds one key: the file name is the key, the trimmed contents
// the value. Environment variables can override any key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/literature-review/pkg/types"
)

// Key file names understood by the engine backends.
const (
	AnthropicAPIKey = "anthropic-api-key"
	GeminiAPIKey    = "gemini-api-key"
	EngineToken     = "engine-token"
)

// Known lists the keys the engine backends read.
var Known = []string{AnthropicAPIKey, GeminiAPIKey, EngineToken}

// Secrets maps key names to their values.
type Secrets map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty set; a file that cannot be read is skipped and logged.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Secrets{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", zap.String("key", name), zap.Error(err))
			continue
		}
		s.set(name, string(data))
	}
	return s, nil
}

// WithEnv overlays Known keys from the environment. A key maps to
// PREFIX_KEY_NAME, e.g. LITERATURE_REVIEW_ANTHROPIC_API_KEY. lookup is
// usually os.LookupEnv.
func (s Secrets) WithEnv(prefix string, lookup func(string) (string, bool)) Secrets {
	out := make(Secrets, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, key := range Known {
		name := prefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if v, ok := lookup(name); ok {
			out.set(key, v)
		}
	}
	return out
}

// Keys returns the loaded key names, sorted.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// EngineKey returns the credential the given backend authenticates with, or "".
func (s Secrets) EngineKey(backend types.EngineBackend) string {
	switch backend {
	case types.BackendClaude:
		return s[AnthropicAPIKey]
	case types.BackendGemini:
		return s[GeminiAPIKey]
	default:
		return s[EngineToken]
	}
}

// set stores a trimmed value; blank values are ignored.
func (s Secrets) set(key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		s[key] = value
	}
}
