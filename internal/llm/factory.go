package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new synthesis provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "groq", "":
		return NewGroqProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: groq, openai, ollama)", config.Provider)
	}
}
