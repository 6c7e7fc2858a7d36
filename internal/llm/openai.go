package llm

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ChatProvider implements the Provider interface over any
// chat-completions-compatible API (OpenAI, Groq)
type ChatProvider struct {
	name         string
	client       *openai.Client
	config       Config
	defaultModel string
}

// GroqBaseURL is Groq's OpenAI-compatible endpoint
const GroqBaseURL = "https://api.groq.com/openai/v1"

// NewOpenAIProvider creates a provider backed by the OpenAI API
func NewOpenAIProvider(config Config) (*ChatProvider, error) {
	return newChatProvider("openai", config, "", openai.GPT4oMini)
}

// NewGroqProvider creates a provider backed by Groq's OpenAI-compatible API
func NewGroqProvider(config Config) (*ChatProvider, error) {
	return newChatProvider("groq", config, GroqBaseURL, "llama-3.3-70b-versatile")
}

func newChatProvider(name string, config Config, defaultBaseURL, defaultModel string) (*ChatProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	} else if defaultBaseURL != "" {
		clientConfig.BaseURL = defaultBaseURL
	}

	return &ChatProvider{
		name:         name,
		client:       openai.NewClientWithConfig(clientConfig),
		config:       config,
		defaultModel: defaultModel,
	}, nil
}

// Name returns the provider name
func (p *ChatProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *ChatProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Synthesize generates a persona draft via the Chat Completions API
func (p *ChatProvider) Synthesize(ctx context.Context, req Request) (*Response, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Username, req.Evidence, req.Embed)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = p.defaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 2048
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return nil, fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}

	citedURLs := extractURLs(output)

	// Verify strict citation mode: anything outside the allowlist is a leak
	if p.config.StrictCitations {
		for _, cited := range citedURLs {
			if !contains(req.EvidenceURLs, cited) {
				return nil, fmt.Errorf("citation leak: model cited disallowed URL: %s", cited)
			}
		}
	}

	return &Response{
		Output:     output,
		CitedURLs:  citedURLs,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// extractURLs extracts all URLs from text
func extractURLs(text string) []string {
	urlPattern := regexp.MustCompile(`https?://[^\s\)]+`)
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, url := range matches {
		url = strings.TrimRight(url, ".,;:!?")
		if !seen[url] {
			seen[url] = true
			unique = append(unique, url)
		}
	}

	return unique
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
