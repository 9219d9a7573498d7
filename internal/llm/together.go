package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// togetherBaseURL is Together's OpenAI-compatible inference endpoint. The
// trailing slash keeps the /v1 prefix intact when the SDK joins request
// paths onto it.
const togetherBaseURL = "https://api.together.xyz/v1/"

const (
	defaultChatTimeout = 30 * time.Second
	defaultMaxTokens   = 500
)

// TogetherClient calls Together's hosted models through their
// OpenAI-compatible chat completions API.
type TogetherClient struct {
	model  string
	apiKey string
	client *openai.Client
}

// NewTogetherClient builds a client for Together's inference endpoint. An
// empty apiKey is accepted so the process can start without cloud
// credentials; calls fail until one is configured.
func NewTogetherClient(apiKey, model string) *TogetherClient {
	return newTogetherClient(apiKey, model, togetherBaseURL)
}

func newTogetherClient(apiKey, model, baseURL string) *TogetherClient {
	cli := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &TogetherClient{
		model:  model,
		apiKey: apiKey,
		client: &cli,
	}
}

// Generate sends prompt as a single user message and returns the completion
// text, capped at a fixed number of output tokens.
func (c *TogetherClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil together client")
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("together: api key not configured")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		MaxTokens: openai.Int(defaultMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("together request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("together: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
