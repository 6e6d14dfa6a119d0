package config

import (
	"fmt"
	"reflect"

	"github.com/asaskevich/govalidator"
	"github.com/caarlos0/env/v11"
)

// Supported enrichment providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds the application configuration.
type Config struct {
	EnvVars EnvVars  `json:"env"`
	Prompts *Prompts `json:"-"`
}

// EnvVars holds environment variables required by the application.
// Fields tagged `optional:"true"` are skipped by CheckConfigEnvFields.
type EnvVars struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	RecipesURL         string   `env:"RECIPES_URL" envDefault:"https://dummyjson.com/recipes"`
	EnrichProvider     string   `env:"ENRICH_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey       string   `env:"OPENAI_API_KEY" optional:"true"`
	OpenAIModel        string   `env:"OPENAI_MODEL" envDefault:"gpt-4"`
	AnthropicAPIKey    string   `env:"ANTHROPIC_API_KEY" optional:"true"`
	AnthropicModel     string   `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	EnrichMaxTokens    int      `env:"ENRICH_MAX_TOKENS" envDefault:"150"`
	EnrichConcurrency  int      `env:"ENRICH_CONCURRENCY" envDefault:"1"`
	SearchRateLimitRPS int      `env:"SEARCH_RATE_LIMIT_RPS" envDefault:"2" optional:"true"`
	PromptsPath        string   `env:"PROMPTS_PATH" envDefault:"configs/prompts.yaml"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080" optional:"true"`
}

// LoadConfig parses environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config.EnvVars); err != nil {
		return nil, err
	}
	return &config, nil
}

// CheckConfigEnvFields validates that all required EnvVars fields are set
// and that the recipe source and provider selection make sense.
func (c *Config) CheckConfigEnvFields() error {
	if err := checkFieldsRecursive(reflect.ValueOf(c.EnvVars)); err != nil {
		return err
	}
	if !govalidator.IsURL(c.EnvVars.RecipesURL) {
		return fmt.Errorf("$RecipesURL is not a valid URL: %q", c.EnvVars.RecipesURL)
	}
	switch c.EnvVars.EnrichProvider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("$EnrichProvider must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.EnvVars.EnrichProvider)
	}
	return nil
}

func checkFieldsRecursive(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := v.Type().Field(i)
		if fieldType.Tag.Get("optional") == "true" {
			continue
		}
		if field.IsZero() {
			return fmt.Errorf("$%s must be set", fieldType.Name)
		}
		if field.Kind() == reflect.Struct {
			if err := checkFieldsRecursive(field); err != nil {
				return err
			}
		}
	}
	return nil
}
