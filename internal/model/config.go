package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Reddit      RedditConfig      `yaml:"reddit"`
	HTTP        HTTPConfig        `yaml:"http"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// RedditConfig configures the evidence collector
type RedditConfig struct {
	BaseURL       string `yaml:"base_url"`        // OAuth API endpoint
	AuthURL       string `yaml:"auth_url"`        // Token endpoint
	PublicBaseURL string `yaml:"public_base_url"` // Unauthenticated .json listings
	ClientID      string `yaml:"-"`               // From REDDIT_CLIENT_ID, never persisted
	ClientSecret  string `yaml:"-"`               // From REDDIT_CLIENT_SECRET, never persisted
	UserAgent     string `yaml:"user_agent"`
	Limit         int    `yaml:"limit"` // Listing page size per kind
	Embed         int    `yaml:"embed"` // Items per kind embedded in the prompt
	Public        bool   `yaml:"public"`
}

// HTTPConfig configures outbound HTTP behavior
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
}

// LLMConfig configures the synthesis provider
type LLMConfig struct {
	Provider        string  `yaml:"provider"` // groq, openai, ollama
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"-"` // From env, never persisted
	BaseURL         string  `yaml:"base_url,omitempty"`
	Timeout         int     `yaml:"timeout"` // seconds
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float32 `yaml:"temperature"`
	StrictCitations bool    `yaml:"strict_citations"`
}

// CacheConfig configures listing caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// RateLimitConfig throttles requests per API host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig configures where and how personas are written
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			BaseURL:       "https://oauth.reddit.com",
			AuthURL:       "https://www.reddit.com/api/v1/access_token",
			PublicBaseURL: "https://www.reddit.com",
			UserAgent:     "personagen/0.1 (persona research tool)",
			Limit:         100,
			Embed:         10,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			MaxBodyBytes: 2_000_000,
		},
		LLM: LLMConfig{
			Provider:        "groq",
			Model:           "llama-3.3-70b-versatile",
			Timeout:         60,
			MaxTokens:       2048,
			Temperature:     0.7,
			StrictCitations: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Dir: "personas",
		},
	}
}
