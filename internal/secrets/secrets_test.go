// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literature-review/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AnthropicAPIKey, "  sk-ant-abc  \n")
				writeFile(t, dir, GeminiAPIKey, "gm_xyz")
				writeFile(t, dir, EngineToken, "tok\n")
				return dir
			},
			want: Secrets{
				AnthropicAPIKey: "sk-ant-abc",
				GeminiAPIKey:    "gm_xyz",
				EngineToken:     "tok",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AnthropicAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{AnthropicAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, EngineToken, "tok")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{EngineToken: "tok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestEngineKey(t *testing.T) {
	s := Secrets{AnthropicAPIKey: "a", GeminiAPIKey: "g", EngineToken: "t"}
	assert.Equal(t, "a", s.EngineKey(types.BackendClaude))
	assert.Equal(t, "g", s.EngineKey(types.BackendGemini))
	assert.Equal(t, "t", s.EngineKey(types.BackendHTTP))
	assert.Empty(t, Secrets{}.EngineKey(types.BackendClaude))
}

func TestWithEnv(t *testing.T) {
	env := map[string]string{
		"LITERATURE_REVIEW_GEMINI_API_KEY": " gm-env ",
		"LITERATURE_REVIEW_ENGINE_TOKEN":   "",
		"LITERATURE_REVIEW_UNRELATED":      "x",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	base := Secrets{GeminiAPIKey: "gm-file", AnthropicAPIKey: "sk-file"}

	got := base.WithEnv("LITERATURE_REVIEW", lookup)

	assert.Equal(t, Secrets{GeminiAPIKey: "gm-env", AnthropicAPIKey: "sk-file"}, got)
	assert.Equal(t, "gm-file", base[GeminiAPIKey], "base set is not modified")
}

func TestKeys(t *testing.T) {
	s := Secrets{GeminiAPIKey: "g", AnthropicAPIKey: "a"}
	assert.Equal(t, []string{AnthropicAPIKey, GeminiAPIKey}, s.Keys())
	assert.Empty(t, Secrets{}.Keys())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
