package llm

import (
	"context"
	"errors"

	"personagen/internal/model"
)

// ErrEmptyResponse indicates the model returned no usable output
var ErrEmptyResponse = errors.New("model returned an empty response")

// Provider defines the interface for persona synthesis backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Synthesize generates a persona draft from collected evidence
	Synthesize(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for persona synthesis
type Request struct {
	// Username of the analyzed account
	Username string

	// Evidence is the collected activity, posts first
	Evidence []model.Evidence

	// EvidenceURLs is the STRICT allowlist of permalinks the model can cite.
	// The model cannot reference any URL not in this list.
	EvidenceURLs []string

	// Embed caps how many items of each kind are placed in the prompt
	Embed int

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling randomness
	Temperature float32
}

// Response contains the raw synthesis output
type Response struct {
	// Output is the model's persona draft (markdown sections with bullets)
	Output string

	// CitedURLs are the permalinks the model actually cited (for verification)
	CitedURLs []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "groq", "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for Groq/OpenAI
	APIKey string

	// BaseURL for custom endpoints (Groq default, Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// StrictCitations enforces the permalink allowlist (should always be true)
	StrictCitations bool

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:        mc.Provider,
		Model:           mc.Model,
		APIKey:          mc.APIKey,
		BaseURL:         mc.BaseURL,
		Timeout:         mc.Timeout,
		StrictCitations: mc.StrictCitations,
		MaxTokens:       mc.MaxTokens,
		Temperature:     mc.Temperature,
	}
}
