package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile points ENV_FILE at a path that does not exist so a developer's
// .env cannot leak into the test.
func noEnvFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad(t *testing.T) {
	noEnvFile(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, "pollinations", cfg.AIBackend)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadCustomValues(t *testing.T) {
	noEnvFile(t)
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("AI_BACKEND", "claude")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "claude", cfg.AIBackend)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
}

func TestLoadOllama(t *testing.T) {
	noEnvFile(t)
	t.Setenv("AI_BACKEND", "ollama")
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.AIBackend)
	assert.Equal(t, "http://gpu-box:11434", cfg.OllamaHost)
	assert.Equal(t, "llava", cfg.OllamaModel)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nLISTEN_ADDR=:7000\n"), 0600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("LISTEN_ADDR", ":9100")
	// t.Setenv restores the original value; unset so the file can supply it.
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	// Real environment wins over the file.
	assert.Equal(t, ":9100", cfg.ListenAddr)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad timeout", env: map[string]string{"AI_TIMEOUT": "soon"}},
		{name: "negative timeout", env: map[string]string{"AI_TIMEOUT": "-1s"}},
		{name: "unknown backend", env: map[string]string{"AI_BACKEND": "openrouter"}},
		{name: "claude without key", env: map[string]string{"AI_BACKEND": "claude", "CLAUDE_API_KEY": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noEnvFile(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
