package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			// Parse and restore each env var
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	// Clear env to test defaults
	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"RootDir", cfg.RootDir, "."},
		{"UploadDir", cfg.UploadDir, "uploads"},
		{"MaxUploadSize", cfg.MaxUploadSize, int64(5242880)},
		{"MaxContextChars", cfg.MaxContextChars, 4000},
		{"OllamaBaseURL", cfg.OllamaBaseURL, "http://localhost:11434"},
		{"OllamaModel", cfg.OllamaModel, "llama3"},
		{"TogetherModel", cfg.TogetherModel, "mistralai/Mixtral-8x7B-Instruct-v0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Save and restore env
	originalPort := os.Getenv("PORT")
	originalLogLevel := os.Getenv("LOG_LEVEL")
	defer func() {
		os.Setenv("PORT", originalPort)
		os.Setenv("LOG_LEVEL", originalLogLevel)
	}()

	// Set test values
	os.Setenv("PORT", "9090")
	os.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	// Save and restore env
	originalBase := os.Getenv("OLLAMA_BASE_URL")
	originalModel := os.Getenv("TOGETHER_MODEL")
	defer func() {
		os.Setenv("OLLAMA_BASE_URL", originalBase)
		os.Setenv("TOGETHER_MODEL", originalModel)
	}()

	// Set test values
	os.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")
	os.Setenv("TOGETHER_MODEL", "meta-llama/Llama-3-70b-chat-hf")

	cfg := Load()

	if cfg.OllamaBaseURL != "http://ollama.internal:11434" {
		t.Errorf("expected ollama base URL override, got %s", cfg.OllamaBaseURL)
	}
	if cfg.TogetherModel != "meta-llama/Llama-3-70b-chat-hf" {
		t.Errorf("expected together model override, got %s", cfg.TogetherModel)
	}
}
