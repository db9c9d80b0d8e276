package config

import (
	"fmt"
	"os"
)

// Provider roles a workflow request may name. Each role maps to one
// configured provider.
const (
	ProviderRolePrimary   = "primary"
	ProviderRoleSecondary = "secondary"
	ProviderRoleLocal     = "local"
)

// Provider types understood by the llms package.
const (
	ProviderTypeOpenAI    = "openai"
	ProviderTypeAnthropic = "anthropic"
	ProviderTypeOllama    = "ollama"
)

// LLMConfig holds the configured language-model providers keyed by role.
type LLMConfig struct {
	Providers map[string]*LLMProviderConfig `yaml:"providers"`
}

// LLMProviderConfig configures one language-model provider.
type LLMProviderConfig struct {
	Type        string  `yaml:"type"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	Host        string  `yaml:"host"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// Timeout is the per-call deadline in seconds. Model calls are never
	// retried by the gateway, so this is the total budget for one call.
	Timeout int `yaml:"timeout"`
}

func (c *LLMProviderConfig) SetDefaults() {
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
	if c.Host == "" {
		switch c.Type {
		case ProviderTypeOpenAI:
			c.Host = "https://api.openai.com/v1"
		case ProviderTypeAnthropic:
			c.Host = "https://api.anthropic.com/v1"
		case ProviderTypeOllama:
			c.Host = "http://localhost:11434"
		}
	}
	if c.Model == "" {
		switch c.Type {
		case ProviderTypeOpenAI:
			c.Model = "gpt-4o-mini"
		case ProviderTypeAnthropic:
			c.Model = "claude-sonnet-4-20250514"
		case ProviderTypeOllama:
			c.Model = "llama3.2"
		}
	}
}

func (c *LLMProviderConfig) Validate() error {
	switch c.Type {
	case ProviderTypeOpenAI, ProviderTypeAnthropic, ProviderTypeOllama:
	default:
		return fmt.Errorf("unknown llm provider type '%s'", c.Type)
	}
	if c.Type != ProviderTypeOllama && c.APIKey == "" {
		return fmt.Errorf("llm provider '%s' requires an api_key", c.Type)
	}
	return nil
}

func (c *LLMConfig) SetDefaults() {
	if c.Providers == nil {
		c.Providers = DefaultProviders(ZeroConfigOptions{})
	}
	for _, p := range c.Providers {
		p.SetDefaults()
	}
}

func (c *LLMConfig) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("llm.providers must configure at least one provider")
	}
	for role, p := range c.Providers {
		switch role {
		case ProviderRolePrimary, ProviderRoleSecondary, ProviderRoleLocal:
		default:
			return fmt.Errorf("unknown llm provider role '%s'", role)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("llm provider '%s': %w", role, err)
		}
	}
	if _, ok := c.Providers[ProviderRolePrimary]; !ok {
		return fmt.Errorf("llm.providers must configure the 'primary' role")
	}
	return nil
}

// Provider resolves a role to its provider config.
func (c *LLMConfig) Provider(role string) (*LLMProviderConfig, error) {
	p, ok := c.Providers[role]
	if !ok {
		return nil, fmt.Errorf("no llm provider configured for role '%s'", role)
	}
	return p, nil
}

// DefaultProviders builds the provider set for zero-config mode. API keys
// come from flags first, conventional environment variables second.
func DefaultProviders(opts ZeroConfigOptions) map[string]*LLMProviderConfig {
	openAIKey := opts.APIKey
	if openAIKey == "" {
		openAIKey = os.Getenv("OPENAI_API_KEY")
	}
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")

	providers := map[string]*LLMProviderConfig{
		ProviderRolePrimary: {
			Type:   ProviderTypeOpenAI,
			APIKey: openAIKey,
			Model:  opts.Model,
		},
		ProviderRoleLocal: {
			Type: ProviderTypeOllama,
			Host: opts.BaseURL,
		},
	}
	if anthropicKey != "" {
		providers[ProviderRoleSecondary] = &LLMProviderConfig{
			Type:   ProviderTypeAnthropic,
			APIKey: anthropicKey,
		}
	}

	// --provider overrides which type backs the primary role.
	if opts.Provider != "" {
		providers[ProviderRolePrimary] = &LLMProviderConfig{
			Type:   opts.Provider,
			APIKey: opts.APIKey,
			Model:  opts.Model,
			Host:   opts.BaseURL,
		}
		if opts.Provider == ProviderTypeAnthropic && opts.APIKey == "" {
			providers[ProviderRolePrimary].APIKey = anthropicKey
		}
	}

	return providers
}
