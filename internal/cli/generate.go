package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"personagen/internal/model"
	"personagen/internal/pipeline"
)

// ErrMissingCredentials indicates a required environment variable is unset.
// Detected before any network call is attempted.
var ErrMissingCredentials = errors.New("missing required credentials")

var (
	outputDir   string
	limit       int
	embed       int
	timeout     time.Duration
	userAgent   string
	noCache     bool
	publicMode  bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmProvider string
	llmModel    string
)

func init() {
	// Output flags
	rootCmd.Flags().StringVar(&outputDir, "output", "personas", "output directory for persona files")

	// Collection flags
	rootCmd.Flags().IntVar(&limit, "limit", 100, "posts/comments fetched per listing")
	rootCmd.Flags().IntVar(&embed, "embed", 10, "posts/comments of each kind embedded in the prompt")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall run timeout")
	rootCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (overrides REDDIT_USER_AGENT)")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable listing cache (force fresh fetch)")
	rootCmd.Flags().BoolVar(&publicMode, "public", false, "use unauthenticated public listings (no Reddit credentials needed)")
	rootCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	rootCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	rootCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	rootCmd.Flags().StringVar(&llmProvider, "llm-provider", "groq", "LLM provider (groq, openai, ollama)")
	rootCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default depends on provider)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	input := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Profile:  %s\n", input)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(os.Stderr, "Output:   %s\n", cfg.Output.Dir)
		fmt.Fprintf(os.Stderr, "Cache:    %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := p.Generate(ctx, input)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d traits using %s/%s\n", len(result.Traits), result.Provider, result.Model)
	}
	fmt.Printf("Persona for %s saved in %s/\n", result.Username, cfg.Output.Dir)

	return nil
}

// buildConfig assembles the run configuration: defaults, then the config
// file and PERSONAGEN_* environment via viper, then explicitly set flags.
// Credential checks happen here, before any network call.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	applyFileConfig(cfg)

	flags := rootCmd.Flags()
	cfg.Output.Verbose = verbose
	if flags.Changed("output") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("limit") {
		cfg.Reddit.Limit = limit
	}
	if flags.Changed("embed") {
		cfg.Reddit.Embed = embed
	}
	if flags.Changed("public") {
		cfg.Reddit.Public = publicMode
	}
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if flags.Changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if flags.Changed("insecure") {
		cfg.HTTP.InsecureTLS = insecureTLS
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}

	// The user agent stays flag-or-env only: a run without
	// REDDIT_USER_AGENT must fail before any request goes out.
	if ua := firstNonEmpty(userAgent, os.Getenv("REDDIT_USER_AGENT")); ua != "" {
		cfg.Reddit.UserAgent = ua
	} else {
		return nil, fmt.Errorf("%w: REDDIT_USER_AGENT not set", ErrMissingCredentials)
	}

	if !cfg.Reddit.Public {
		cfg.Reddit.ClientID = os.Getenv("REDDIT_CLIENT_ID")
		cfg.Reddit.ClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
		if cfg.Reddit.ClientID == "" {
			return nil, fmt.Errorf("%w: REDDIT_CLIENT_ID not set (or use --public)", ErrMissingCredentials)
		}
		if cfg.Reddit.ClientSecret == "" {
			return nil, fmt.Errorf("%w: REDDIT_CLIENT_SECRET not set (or use --public)", ErrMissingCredentials)
		}
	}

	switch cfg.LLM.Provider {
	case "groq", "":
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("%w: GROQ_API_KEY not set", ErrMissingCredentials)
		}
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrMissingCredentials)
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// applyFileConfig layers values from the config file (and matching
// PERSONAGEN_* environment variables) over the defaults. Only keys the
// file actually sets are applied. API keys carry no file key at all and
// the user agent is handled separately in buildConfig.
func applyFileConfig(cfg *model.Config) {
	setString := func(key string, dst *string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	setBool := func(key string, dst *bool) {
		if viper.IsSet(key) {
			*dst = viper.GetBool(key)
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if viper.IsSet(key) {
			*dst = viper.GetDuration(key)
		}
	}

	setString("reddit.base_url", &cfg.Reddit.BaseURL)
	setString("reddit.auth_url", &cfg.Reddit.AuthURL)
	setString("reddit.public_base_url", &cfg.Reddit.PublicBaseURL)
	setInt("reddit.limit", &cfg.Reddit.Limit)
	setInt("reddit.embed", &cfg.Reddit.Embed)
	setBool("reddit.public", &cfg.Reddit.Public)

	setDuration("http.timeout", &cfg.HTTP.Timeout)
	if viper.IsSet("http.max_body_bytes") {
		cfg.HTTP.MaxBodyBytes = viper.GetInt64("http.max_body_bytes")
	}
	setString("http.http_proxy", &cfg.HTTP.HTTPProxy)
	setString("http.https_proxy", &cfg.HTTP.HTTPSProxy)
	setBool("http.insecure_tls", &cfg.HTTP.InsecureTLS)

	setString("llm.provider", &cfg.LLM.Provider)
	setString("llm.model", &cfg.LLM.Model)
	setString("llm.base_url", &cfg.LLM.BaseURL)
	setInt("llm.timeout", &cfg.LLM.Timeout)
	setInt("llm.max_tokens", &cfg.LLM.MaxTokens)
	if viper.IsSet("llm.temperature") {
		cfg.LLM.Temperature = float32(viper.GetFloat64("llm.temperature"))
	}
	setBool("llm.strict_citations", &cfg.LLM.StrictCitations)

	setBool("cache.enabled", &cfg.Cache.Enabled)
	setString("cache.dir", &cfg.Cache.Dir)
	setDuration("cache.memory_ttl", &cfg.Cache.MemoryTTL)
	setDuration("cache.disk_ttl", &cfg.Cache.DiskTTL)

	if viper.IsSet("rate_limit.requests_per_second") {
		cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("rate_limit.requests_per_second")
	}
	setInt("rate_limit.burst", &cfg.RateLimit.Burst)
	setInt("concurrency.workers", &cfg.Concurrency.Workers)

	setString("output.dir", &cfg.Output.Dir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
