package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"personagen/internal/cache"
	"personagen/internal/model"
	"personagen/internal/worker"
)

const tokenJSON = `{"access_token":"test-token","expires_in":3600,"token_type":"bearer"}`

const postsJSON = `{"kind":"Listing","data":{"children":[
{"kind":"t3","data":{"id":"abc","title":"Hello","selftext":"I love gardening","subreddit":"gardening","permalink":"/r/gardening/comments/abc/hello/","score":10,"created_utc":1700000000}},
{"kind":"t3","data":{"id":"def","title":"Link post","selftext":"","selftext_html":"&lt;div&gt;&lt;p&gt;from html&lt;/p&gt;&lt;/div&gt;","subreddit":"golang","permalink":"/r/golang/comments/def/link/","score":3,"created_utc":1700000100}}
]}}`

const commentsJSON = `{"kind":"Listing","data":{"children":[
{"kind":"t1","data":{"id":"c1","body":"Nice write-up","link_title":"Hello","subreddit":"gardening","permalink":"/r/gardening/comments/abc/hello/c1/","score":2,"created_utc":1700000200}}
]}}`

func testConfig(serverURL string) model.RedditConfig {
	return model.RedditConfig{
		BaseURL:      serverURL,
		AuthURL:      serverURL + "/api/v1/access_token",
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		UserAgent:    "test-agent/0.1",
		Limit:        100,
		Embed:        10,
	}
}

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1 << 20,
	}
}

func newTestClient(cfg model.RedditConfig, store cache.Cache) *Client {
	return NewClient(cfg, testHTTPConfig(), worker.NewLimiter(1000, 100), store)
}

func listingHandler(t *testing.T, tokenHits, listingHits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/access_token":
			if tokenHits != nil {
				tokenHits.Add(1)
			}
			if user, _, ok := r.BasicAuth(); !ok || user != "test-id" {
				t.Errorf("missing or wrong basic auth on token request")
			}
			_, _ = fmt.Fprint(w, tokenJSON)
		case strings.HasSuffix(r.URL.Path, "/submitted"):
			if listingHits != nil {
				listingHits.Add(1)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer token, got %q", got)
			}
			if got := r.Header.Get("User-Agent"); got != "test-agent/0.1" {
				t.Errorf("unexpected User-Agent: %q", got)
			}
			_, _ = fmt.Fprint(w, postsJSON)
		case strings.HasSuffix(r.URL.Path, "/comments"):
			if listingHits != nil {
				listingHits.Add(1)
			}
			_, _ = fmt.Fprint(w, commentsJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestClient_UserActivity(t *testing.T) {
	server := httptest.NewServer(listingHandler(t, nil, nil))
	defer server.Close()

	client := newTestClient(testConfig(server.URL), nil)

	items, err := client.UserActivity(context.Background(), "spez")
	if err != nil {
		t.Fatalf("UserActivity failed: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 evidence items, got %d", len(items))
	}

	// Posts come first, in listing order
	if items[0].Kind != model.EvidenceKindPost || items[0].Text != "I love gardening" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Permalink != "https://www.reddit.com/r/gardening/comments/abc/hello/" {
		t.Errorf("permalink not absolutized: %s", items[0].Permalink)
	}

	// Empty selftext falls back to the flattened HTML body
	if items[1].Text != "from html" {
		t.Errorf("expected HTML fallback text, got %q", items[1].Text)
	}

	// Comments carry the parent link title
	last := items[2]
	if last.Kind != model.EvidenceKindComment || last.Title != "Hello" || last.Text != "Nice write-up" {
		t.Errorf("unexpected comment item: %+v", last)
	}
}

func TestClient_UserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			_, _ = fmt.Fprint(w, tokenJSON)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(testConfig(server.URL), nil)

	_, err := client.UserActivity(context.Background(), "no_such_user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestClient_SuspendedUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			_, _ = fmt.Fprint(w, tokenJSON)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(testConfig(server.URL), nil)

	_, err := client.UserActivity(context.Background(), "suspended_user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for suspended account, got %v", err)
	}
}

func TestClient_RateLimited(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			_, _ = fmt.Fprint(w, tokenJSON)
			return
		}
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	origSleep := sleepFunc
	sleepFunc = func(d time.Duration) {}
	defer func() { sleepFunc = origSleep }()

	client := newTestClient(testConfig(server.URL), nil)

	_, err := client.UserActivity(context.Background(), "spez")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// 429 is propagated, never retried
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestClient_RetryThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/access_token":
			_, _ = fmt.Fprint(w, tokenJSON)
		case strings.HasSuffix(r.URL.Path, "/submitted"):
			if attempts.Add(1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = fmt.Fprint(w, postsJSON)
		case strings.HasSuffix(r.URL.Path, "/comments"):
			_, _ = fmt.Fprint(w, commentsJSON)
		}
	}))
	defer server.Close()

	origSleep := sleepFunc
	sleepFunc = func(d time.Duration) {}
	defer func() { sleepFunc = origSleep }()

	client := newTestClient(testConfig(server.URL), nil)

	items, err := client.UserActivity(context.Background(), "spez")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}
}

func TestClient_CacheHit(t *testing.T) {
	var tokenHits, listingHits atomic.Int32
	server := httptest.NewServer(listingHandler(t, &tokenHits, &listingHits))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	client := newTestClient(testConfig(server.URL), store)

	for i := 0; i < 2; i++ {
		if _, err := client.UserActivity(context.Background(), "spez"); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	// Second run is served entirely from cache
	if listingHits.Load() != 2 {
		t.Errorf("expected 2 upstream listing hits, got %d", listingHits.Load())
	}
	if tokenHits.Load() != 1 {
		t.Errorf("expected 1 token request, got %d", tokenHits.Load())
	}
}

func TestClient_PublicMode(t *testing.T) {
	var tokenHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/access_token":
			tokenHits.Add(1)
		case r.URL.Path == "/robots.txt":
			w.WriteHeader(http.StatusNotFound)
		case strings.HasSuffix(r.URL.Path, "/submitted.json"):
			if got := r.Header.Get("Authorization"); got != "" {
				t.Errorf("public mode must not send Authorization, got %q", got)
			}
			_, _ = fmt.Fprint(w, postsJSON)
		case strings.HasSuffix(r.URL.Path, "/comments.json"):
			_, _ = fmt.Fprint(w, commentsJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Public = true
	cfg.PublicBaseURL = server.URL
	cfg.ClientID = ""
	cfg.ClientSecret = ""

	client := newTestClient(cfg, nil)

	items, err := client.UserActivity(context.Background(), "spez")
	if err != nil {
		t.Fatalf("UserActivity failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}
	if tokenHits.Load() != 0 {
		t.Errorf("public mode must not request a token, got %d hits", tokenHits.Load())
	}
}

func TestClient_PublicModeRobotsDisallow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /user/\n")
			return
		}
		_, _ = fmt.Fprint(w, postsJSON)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Public = true
	cfg.PublicBaseURL = server.URL

	client := newTestClient(cfg, nil)

	_, err := client.UserActivity(context.Background(), "spez")
	if err == nil || !strings.Contains(err.Error(), "robots.txt disallows") {
		t.Fatalf("expected robots.txt refusal, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{fmt.Errorf("unexpected status: 503 Service Unavailable"), true},
		{fmt.Errorf("unexpected status: 500 Internal Server Error"), true},
		{fmt.Errorf("fetch: connection refused"), true},
		{fmt.Errorf("fetch: connection reset by peer"), true},
		{ErrUserNotFound, false},
		{ErrRateLimited, false},
		{fmt.Errorf("create request: invalid URL"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.retryable {
			t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.retryable)
		}
	}
}
