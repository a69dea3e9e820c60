package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	DBPath        string
	AIBackend     string
	AIEndpoint    string
	AIModel       string
	AITimeout     time.Duration
	ClaudeAPIKey  string
	ClaudeModel   string
	ClaudeBaseURL string
	OllamaHost    string
	OllamaModel   string
	LogLevel      string
	LogFormat     string
	LogFile       string
}

// Load reads configuration from the environment. Variables in ENV_FILE
// (default .env) fill in anything not already set; a missing file is fine.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	timeout, err := time.ParseDuration(getEnv("AI_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid AI_TIMEOUT: must be positive")
	}

	cfg := &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "/data/whrtrack.db"),
		AIBackend:     getEnv("AI_BACKEND", "pollinations"),
		AIEndpoint:    getEnv("AI_ENDPOINT", "https://text.pollinations.ai/openai"),
		AIModel:       getEnv("AI_MODEL", "openai"),
		AITimeout:     timeout,
		ClaudeAPIKey:  getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:   getEnv("CLAUDE_MODEL", "claude-3-5-haiku-latest"),
		ClaudeBaseURL: getEnv("CLAUDE_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llava"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		LogFile:       getEnv("LOG_FILE", ""),
	}

	switch cfg.AIBackend {
	case "pollinations", "ollama":
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			return nil, fmt.Errorf("CLAUDE_API_KEY is required when AI_BACKEND=claude")
		}
	default:
		return nil, fmt.Errorf("unknown AI_BACKEND %q", cfg.AIBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
