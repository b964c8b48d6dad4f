package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	// Each case checks err itself so a failed constructor never yields a
	// non-nil interface holding a nil pointer
	switch strings.ToLower(config.Provider) {
	case "openai":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "anthropic", "claude":
		p, err := NewAnthropicProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "ollama":
		p, err := NewOllamaProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
