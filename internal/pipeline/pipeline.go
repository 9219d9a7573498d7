package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docchat/internal/files"
	"docchat/internal/llm"
	"docchat/internal/prompt"
)

// ErrValidation marks requests rejected before any filesystem or provider
// work happens.
var ErrValidation = errors.New("invalid request")

// Request is one incoming query against the file tree. Model falls back to
// the local provider when absent.
type Request struct {
	Path  string `json:"path" validate:"required"`
	Query string `json:"query" validate:"required"`
	Model string `json:"model" validate:"omitempty,oneof=ollama together"`
}

// FileSource resolves and reads query paths. *files.Store satisfies it.
type FileSource interface {
	Sanitize(input string) (string, error)
	Aggregate(ctx context.Context, path string) ([]files.Record, error)
}

// Dispatcher forwards a prompt to a provider. *llm.Gateway satisfies it.
type Dispatcher interface {
	Query(ctx context.Context, provider, prompt, rawContext string) llm.ModelResponse
}

// Pipeline runs one query end to end: validate, resolve the path, aggregate
// content, format the prompt, dispatch to the provider. It holds no
// per-request state, so one instance serves concurrent requests.
type Pipeline struct {
	source          FileSource
	dispatcher      Dispatcher
	maxContextChars int
	log             *slog.Logger
}

// New assembles a pipeline. maxContextChars <= 0 falls back to the
// formatter's default.
func New(log *slog.Logger, source FileSource, dispatcher Dispatcher, maxContextChars int) *Pipeline {
	return &Pipeline{
		source:          source,
		dispatcher:      dispatcher,
		maxContextChars: maxContextChars,
		log:             log,
	}
}

// HandleQuery walks req through the pipeline. Validation and filesystem
// failures return an error without touching the provider; provider failures
// never surface as errors, they arrive inside the ModelResponse.
func (p *Pipeline) HandleQuery(ctx context.Context, req Request) (llm.ModelResponse, error) {
	if req.Model == "" {
		req.Model = llm.ProviderOllama
	}
	if err := validate(req); err != nil {
		return llm.ModelResponse{}, err
	}

	path, err := p.source.Sanitize(req.Path)
	if err != nil {
		return llm.ModelResponse{}, err
	}
	records, err := p.source.Aggregate(ctx, path)
	if err != nil {
		return llm.ModelResponse{}, err
	}

	pr := prompt.Build(records, req.Query, p.maxContextChars)
	p.log.Info("dispatching query",
		"model", req.Model,
		"path", path,
		"records", len(records),
		"context_len", len(pr.RawContext),
	)
	return p.dispatcher.Query(ctx, req.Model, pr.Text, pr.RawContext), nil
}

func validate(req Request) error {
	if strings.TrimSpace(req.Path) == "" {
		return fmt.Errorf("%w: path is required", ErrValidation)
	}
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrValidation)
	}
	if req.Model != llm.ProviderOllama && req.Model != llm.ProviderTogether {
		return fmt.Errorf("%w: unknown model %q", ErrValidation, req.Model)
	}
	return nil
}
