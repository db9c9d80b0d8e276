package llms

import (
	"fmt"
	"time"

	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/registry"
)

// ProviderRegistry holds configured providers keyed by role
// (primary/secondary/local).
type ProviderRegistry struct {
	*registry.BaseRegistry[Provider]
	timeouts map[string]time.Duration
}

// NewProviderFromConfig constructs a provider from its config.
func NewProviderFromConfig(cfg *config.LLMProviderConfig) (Provider, error) {
	switch cfg.Type {
	case config.ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg), nil
	case config.ProviderTypeOllama:
		return NewOllamaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider type '%s'", cfg.Type)
	}
}

// BuildRegistry constructs providers for every configured role.
func BuildRegistry(cfg *config.LLMConfig) (*ProviderRegistry, error) {
	reg := &ProviderRegistry{
		BaseRegistry: registry.NewBaseRegistry[Provider](),
		timeouts:     make(map[string]time.Duration),
	}

	for role, providerCfg := range cfg.Providers {
		provider, err := NewProviderFromConfig(providerCfg)
		if err != nil {
			return nil, fmt.Errorf("llm provider '%s': %w", role, err)
		}
		if err := reg.Register(role, provider); err != nil {
			return nil, err
		}
		reg.timeouts[role] = time.Duration(providerCfg.Timeout) * time.Second
	}

	return reg, nil
}

// GatewayFor builds a gateway for the provider registered under role.
func (r *ProviderRegistry) GatewayFor(role string) (*Gateway, error) {
	provider, ok := r.Get(role)
	if !ok {
		return nil, fmt.Errorf("no llm provider configured for role '%s'", role)
	}
	return NewGateway(provider, r.timeouts[role]), nil
}
