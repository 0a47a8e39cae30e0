// Package llm provides completion-service clients behind types.LLMClient.
//
// Three providers are supported: gemini (official SDK), openai (any
// OpenAI-compatible chat completions endpoint) and simulated (canned
// courtroom responses for offline/demo operation). The simulated provider
// is behaviorally indistinguishable at the interface level: same response
// shape, same stop reasons.
package llm

import (
	"fmt"
	"strings"
	"time"

	"tribunal/internal/logging"
	"tribunal/internal/types"
)

// Providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderSimulated = "simulated"
)

// Config holds provider-agnostic client configuration.
type Config struct {
	Provider        string
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	MaxOutputTokens int
	Temperature     float64
}

// NewClient creates an LLM client for the configured provider. A missing
// provider or missing API key degrades to the simulated client so the rest
// of the system keeps working offline.
func NewClient(cfg Config) (types.LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	if provider == "" || provider == ProviderSimulated {
		logging.LLM("using simulated completion client")
		return NewSimulatedClient(), nil
	}
	if cfg.APIKey == "" {
		logging.Get(logging.CategoryLLM).Warn("provider %s configured without api key, falling back to simulated", provider)
		return NewSimulatedClient(), nil
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiClient(cfg)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
