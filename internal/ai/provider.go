package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/windoze95/saltybytes-search/internal/config"
)

// DefaultMaxTokens bounds the length of a generated description.
const DefaultMaxTokens = 150

// EnrichmentProvider produces an expanded description for a single recipe.
type EnrichmentProvider interface {
	EnrichDescription(ctx context.Context, req EnrichRequest) (string, error)
}

// EnrichRequest carries the recipe fields embedded in the prompt. Values are
// passed verbatim, fallbacks included.
type EnrichRequest struct {
	Name        string
	Description string
	Ingredients string
}

// Settings configures a provider client.
type Settings struct {
	Model     string
	MaxTokens int
	BaseURL   string // empty means the provider default
}

// ErrMissingCredential is returned when the provider API key is not set.
var ErrMissingCredential = errors.New("enrichment provider API key is not configured")

// ProviderError wraps any failure reported while calling a provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Error kinds reported on degraded cards. Timeouts are provider failures.
const (
	ErrorKindCredential = "credential"
	ErrorKindProvider   = "provider"
	ErrorKindCanceled   = "canceled"
)

// ErrorKind classifies an enrichment error for display and logging.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return ErrorKindCredential
	case errors.Is(err, context.Canceled):
		return ErrorKindCanceled
	default:
		return ErrorKindProvider
	}
}

// NewEnrichmentProvider builds the provider selected in cfg. It fails fast
// when the matching credential is missing.
func NewEnrichmentProvider(cfg *config.Config) (EnrichmentProvider, error) {
	prompts := cfg.Prompts
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}

	switch cfg.EnvVars.EnrichProvider {
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.EnvVars.AnthropicAPIKey, Settings{
			Model:     cfg.EnvVars.AnthropicModel,
			MaxTokens: cfg.EnvVars.EnrichMaxTokens,
		}, prompts)
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(cfg.EnvVars.OpenAIAPIKey, Settings{
			Model:     cfg.EnvVars.OpenAIModel,
			MaxTokens: cfg.EnvVars.EnrichMaxTokens,
		}, prompts)
	default:
		return nil, fmt.Errorf("unknown enrichment provider %q", cfg.EnvVars.EnrichProvider)
	}
}

// renderEnrichPrompts fills the system and user templates for req.
func renderEnrichPrompts(prompts *config.Prompts, req EnrichRequest) (sys, user string, err error) {
	data := map[string]interface{}{
		"Name":        req.Name,
		"Description": req.Description,
		"Ingredients": req.Ingredients,
	}

	sys, err = config.RenderPrompt(prompts.Enrich.System, data)
	if err != nil {
		return "", "", fmt.Errorf("render system prompt: %w", err)
	}
	user, err = config.RenderPrompt(prompts.Enrich.User, data)
	if err != nil {
		return "", "", fmt.Errorf("render user prompt: %w", err)
	}
	return sys, user, nil
}

// callError wraps a failed provider call. Only cancellation by the caller is
// returned bare; a deadline counts as a provider timeout.
func callError(ctx context.Context, provider string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return &ProviderError{Provider: provider, Err: err}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}
