package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"docchat/internal/config"
	"docchat/internal/files"
	"docchat/internal/llm"
	"docchat/internal/logger"
	"docchat/internal/pipeline"
)

// Deps bundles common runtime dependencies for the server.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Files    *files.Store
	Pipeline *pipeline.Pipeline
}

// Build loads env, config, and shared components. A missing .env file is
// fine; any other problem loading it is not.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	store, err := files.NewStore(cfg.RootDir, cfg.UploadDir)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize file store: %w", err)
	}
	log.Info("file store ready", "root", store.Root(), "uploads", store.UploadDir())

	gateway := buildGateway(cfg, log)

	return Deps{
		Config:   cfg,
		Log:      log,
		Files:    store,
		Pipeline: pipeline.New(log, store, gateway, cfg.MaxContextChars),
	}, nil
}

// buildGateway wires both providers. The together client is registered even
// without an API key so the failure surfaces per request instead of keeping
// the whole server from starting.
func buildGateway(cfg config.Config, log *slog.Logger) *llm.Gateway {
	if cfg.TogetherAPIKey == "" {
		log.Warn("TOGETHER_API_KEY not set; together queries will fail")
	}
	log.Info("providers configured",
		"ollama_url", cfg.OllamaBaseURL,
		"ollama_model", cfg.OllamaModel,
		"together_model", cfg.TogetherModel,
	)
	return llm.NewGateway(log, map[string]llm.Client{
		llm.ProviderOllama:   llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel),
		llm.ProviderTogether: llm.NewTogetherClient(cfg.TogetherAPIKey, cfg.TogetherModel),
	})
}
