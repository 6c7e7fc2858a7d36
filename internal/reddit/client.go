package reddit

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"personagen/internal/cache"
	"personagen/internal/model"
	"personagen/internal/util"
	"personagen/internal/worker"
)

// sleepFunc allows tests to override retry backoff
var sleepFunc = time.Sleep

const (
	maxAttempts  = 3
	retryBackoff = 2 * time.Second
	// Refresh the app token a minute before Reddit expires it
	tokenSlack = 60 * time.Second
	// Reddit grants OAuth clients 100 requests per minute
	oauthRatePerSecond = 100.0 / 60.0
)

// Client retrieves a user's public submissions and comments.
// OAuth mode uses the application-only grant against oauth.reddit.com;
// public mode reads the unauthenticated .json listings and honors robots.txt.
type Client struct {
	httpClient *http.Client
	cfg        model.RedditConfig
	maxBytes   int64
	limiter    *worker.Limiter
	store      cache.Cache // nil when caching is disabled
	robots     *util.RobotsChecker

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new Reddit client
func NewClient(cfg model.RedditConfig, httpCfg model.HTTPConfig, limiter *worker.Limiter, store cache.Cache) *Client {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy),
	}
	if httpCfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	// The OAuth host gets Reddit's documented budget; everything else,
	// including the anonymous endpoints, keeps the configured default.
	if !cfg.Public {
		if parsed, err := url.Parse(cfg.BaseURL); err == nil && parsed.Host != "" {
			limiter.SetHostRate(parsed.Host, oauthRatePerSecond, 0)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   httpCfg.Timeout,
			Transport: transport,
		},
		cfg:      cfg,
		maxBytes: httpCfg.MaxBodyBytes,
		limiter:  limiter,
		store:    store,
		robots:   util.NewRobotsChecker(cfg.UserAgent, httpCfg.Timeout),
	}
}

// UserActivity fetches a user's recent posts and comments, posts first.
// Ordering within each kind follows Reddit's "new" sort.
func (c *Client) UserActivity(ctx context.Context, username string) ([]model.Evidence, error) {
	posts, err := c.fetchListing(ctx, username, model.EvidenceKindPost)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	comments, err := c.fetchListing(ctx, username, model.EvidenceKindComment)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	return append(posts, comments...), nil
}

// fetchListing retrieves one listing page for the given kind
func (c *Client) fetchListing(ctx context.Context, username string, kind model.EvidenceKind) ([]model.Evidence, error) {
	listingURL := c.listingURL(username, kind)

	if c.store != nil {
		if body, found := c.store.Get(cache.Key(listingURL)); found {
			return parseListing(body, kind)
		}
	}

	if c.cfg.Public {
		allowed, delay, err := c.robots.CanFetch(ctx, listingURL)
		if err == nil && !allowed {
			return nil, fmt.Errorf("robots.txt disallows %s", listingURL)
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	body, err := c.getWithRetry(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		_ = c.store.Set(cache.Key(listingURL), body, 0)
	}

	return parseListing(body, kind)
}

// listingURL builds the endpoint for a user listing
func (c *Client) listingURL(username string, kind model.EvidenceKind) string {
	path := "submitted"
	if kind == model.EvidenceKindComment {
		path = "comments"
	}

	limit := c.cfg.Limit
	if limit <= 0 {
		limit = 100
	}

	if c.cfg.Public {
		return fmt.Sprintf("%s/user/%s/%s.json?limit=%d&sort=new", c.cfg.PublicBaseURL, username, path, limit)
	}
	return fmt.Sprintf("%s/user/%s/%s?limit=%d&sort=new", c.cfg.BaseURL, username, path, limit)
}

// getWithRetry performs a GET, retrying transient failures with backoff
func (c *Client) getWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		if attempt < maxAttempts {
			sleepFunc(retryBackoff * time.Duration(attempt))
		}
	}

	return nil, lastErr
}

// get performs a single rate-limited GET against a listing endpoint
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	if !c.cfg.Public {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		// 404 for deleted accounts, 403 for suspended ones
		return nil, ErrUserNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// accessToken returns a valid application-only token, requesting a new one
// when the cached token is near expiry
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}

	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d %s", resp.StatusCode, resp.Status)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBytes)).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access_token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	return c.token, nil
}

// isRetryable reports whether a fetch error is worth retrying.
// Not-found and rate-limit errors are surfaced immediately.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "unexpected status: 5") {
		return true
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") {
		return true
	}

	return false
}
