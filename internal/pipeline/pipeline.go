package pipeline

import (
	"context"
	"fmt"
	"time"

	"personagen/internal/cache"
	"personagen/internal/llm"
	"personagen/internal/model"
	"personagen/internal/persona"
	"personagen/internal/reddit"
	"personagen/internal/worker"
)

// Pipeline orchestrates one persona run: parse, collect, synthesize, write
type Pipeline struct {
	collector *reddit.Client
	provider  llm.Provider
	parser    *persona.Parser
	renderer  *persona.Renderer
	config    *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	parser := persona.NewParser()
	parser.StrictCitations = cfg.LLM.StrictCitations

	return &Pipeline{
		collector: reddit.NewClient(cfg.Reddit, cfg.HTTP, limiter, store),
		provider:  provider,
		parser:    parser,
		renderer:  persona.NewRenderer(),
		config:    cfg,
	}, nil
}

// Generate runs the full pipeline for one profile URL or username and
// writes <username>_persona.txt to the configured output directory.
// Nothing is written until every prior stage has succeeded.
func (p *Pipeline) Generate(ctx context.Context, input string) (*model.Persona, error) {
	username, err := reddit.ParseUsername(input)
	if err != nil {
		return nil, err
	}

	evidence, err := p.collector.UserActivity(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("collect evidence for %s: %w", username, err)
	}

	// Zero evidence still synthesizes: every trait then cites the sentinel
	allowlist := model.Permalinks(evidence)

	resp, err := p.provider.Synthesize(ctx, llm.Request{
		Username:     username,
		Evidence:     evidence,
		EvidenceURLs: allowlist,
		Embed:        p.config.Reddit.Embed,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize persona for %s: %w", username, err)
	}

	traits, err := p.parser.Parse(resp.Output, allowlist)
	if err != nil {
		return nil, fmt.Errorf("parse persona for %s: %w", username, err)
	}

	result := &model.Persona{
		Username:    username,
		ProfileURL:  reddit.ProfileURL(username),
		GeneratedAt: time.Now().UTC(),
		Provider:    p.provider.Name(),
		Model:       resp.Model,
		Traits:      traits,
		Raw:         resp.Output,
		TokensUsed:  resp.TokensUsed,
	}

	if _, err := p.renderer.Write(result, p.config.Output.Dir); err != nil {
		return nil, fmt.Errorf("write persona for %s: %w", username, err)
	}

	return result, nil
}
