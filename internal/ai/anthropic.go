package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/windoze95/saltybytes-search/internal/config"
)

const (
	providerAnthropic = "Claude"

	defaultAnthropicModel = "claude-haiku-4-5-20251001"
)

// AnthropicProvider implements EnrichmentProvider using Claude.
type AnthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	prompts   *config.Prompts
}

// NewAnthropicProvider creates a provider for apiKey. The SDK's built-in
// retries are disabled so a failed call surfaces immediately.
func NewAnthropicProvider(apiKey string, settings Settings, prompts *config.Prompts) (*AnthropicProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	model := settings.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokensOrDefault(settings.MaxTokens)),
		prompts:   prompts,
	}, nil
}

// EnrichDescription asks Claude for an expanded description of the recipe.
func (p *AnthropicProvider) EnrichDescription(ctx context.Context, req EnrichRequest) (string, error) {
	sysPrompt, userPrompt, err := renderEnrichPrompts(p.prompts, req)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: sysPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", callError(ctx, providerAnthropic, err)
	}

	text, err := extractTextContent(resp)
	if err != nil {
		return "", &ProviderError{Provider: providerAnthropic, Err: err}
	}
	return strings.TrimSpace(text), nil
}

func extractTextContent(msg *anthropic.Message) (string, error) {
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.New("no text content in Claude response")
	}
	return text, nil
}
