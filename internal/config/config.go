package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds minimal runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Files
	RootDir   string `env:"ROOT_DIR" envDefault:"."`       // resolution root for query paths
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"` // relative to RootDir unless absolute

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"` // 5MB in bytes

	// Context
	MaxContextChars int `env:"MAX_CONTEXT_CHARS" envDefault:"4000"`

	// Providers
	OllamaBaseURL  string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaModel    string `env:"OLLAMA_MODEL" envDefault:"llama3"`
	TogetherAPIKey string `env:"TOGETHER_API_KEY"`
	TogetherModel  string `env:"TOGETHER_MODEL" envDefault:"mistralai/Mixtral-8x7B-Instruct-v0.1"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
