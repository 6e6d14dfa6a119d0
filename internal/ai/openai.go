package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/windoze95/saltybytes-search/internal/config"
)

const providerOpenAI = "OpenAI"

// OpenAIProvider implements EnrichmentProvider with the chat completions API.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	prompts   *config.Prompts
}

// NewOpenAIProvider creates a provider for apiKey. It returns
// ErrMissingCredential when apiKey is empty.
func NewOpenAIProvider(apiKey string, settings Settings, prompts *config.Prompts) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if settings.BaseURL != "" {
		clientCfg.BaseURL = settings.BaseURL
	}
	model := settings.Model
	if model == "" {
		model = openai.GPT4
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokensOrDefault(settings.MaxTokens),
		prompts:   prompts,
	}, nil
}

// EnrichDescription sends one system and one user message and returns the
// trimmed text of the first choice. Failures are not retried.
func (p *OpenAIProvider) EnrichDescription(ctx context.Context, req EnrichRequest) (string, error) {
	sysPrompt, userPrompt, err := renderEnrichPrompts(p.prompts, req)
	if err != nil {
		return "", err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sysPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", callError(ctx, providerOpenAI, err)
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: providerOpenAI, Err: errors.New("response has no choices")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
