package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Recognized provider identifiers. These are wire-level constants: callers
// send them in requests and get them back in ModelResponse.Model.
const (
	ProviderOllama   = "ollama"
	ProviderTogether = "together"
)

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelResponse is the normalized outcome of one provider call. Model always
// names the provider invoked; exactly one of Text or Error is non-empty. All
// three fields serialize unconditionally so the wire shape is uniform.
type ModelResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Error string `json:"error"`
}

// Gateway dispatches prompts to the provider selected per call and
// normalizes every outcome into a ModelResponse. Transport, auth, timeout,
// and malformed-response failures never escape as errors; they come back in
// ModelResponse.Error with the structured cause logged first.
type Gateway struct {
	clients map[string]Client
	log     *slog.Logger
}

// NewGateway wires provider clients under their identifiers.
func NewGateway(log *slog.Logger, clients map[string]Client) *Gateway {
	return &Gateway{clients: clients, log: log}
}

// Query sends prompt to the named provider. rawContext is not transmitted;
// it is logged so a failure can be traced back to the context that produced
// it.
func (g *Gateway) Query(ctx context.Context, provider, prompt, rawContext string) ModelResponse {
	client, ok := g.clients[provider]
	if !ok || client == nil {
		g.log.Error("unknown provider requested", "provider", provider)
		return ModelResponse{Model: provider, Error: fmt.Sprintf("unknown provider: %s", provider)}
	}

	g.log.Debug("dispatching prompt",
		"provider", provider,
		"prompt_len", len(prompt),
		"context_len", len(rawContext),
	)
	text, err := client.Generate(ctx, prompt)
	if err != nil {
		g.log.Error("provider call failed", "provider", provider, "err", err)
		return ModelResponse{Model: provider, Error: err.Error()}
	}
	return ModelResponse{Model: provider, Text: text}
}
