package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptPair holds a system and user prompt template.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Prompts is the top-level prompt configuration loaded from YAML.
type Prompts struct {
	Enrich PromptPair `yaml:"enrich"`
}

const (
	defaultEnrichSystem = "You are a culinary expert. Provide detailed and enhanced descriptions for recipes."
	defaultEnrichUser   = "Recipe Name: {{.Name}}\nDescription: {{.Description}}\nIngredients: {{.Ingredients}}\n\nEnhanced Description:"
)

// DefaultPrompts returns the built-in prompt set. Any template left empty in
// a loaded YAML file falls back to these.
func DefaultPrompts() *Prompts {
	return &Prompts{
		Enrich: PromptPair{
			System: defaultEnrichSystem,
			User:   defaultEnrichUser,
		},
	}
}

// LoadPrompts reads and parses a YAML prompt configuration file.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	defaults := DefaultPrompts()
	if strings.TrimSpace(prompts.Enrich.System) == "" {
		prompts.Enrich.System = defaults.Enrich.System
	}
	if strings.TrimSpace(prompts.Enrich.User) == "" {
		prompts.Enrich.User = defaults.Enrich.User
	}

	return &prompts, nil
}

// RenderPrompt executes Go template interpolation on a prompt string.
// The data map provides values for placeholders like {{.Name}},
// {{.Description}}, and {{.Ingredients}}.
func RenderPrompt(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
