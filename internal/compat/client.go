package compat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultRequestTimeout bounds a single round-trip to the mold service.
const DefaultRequestTimeout = 3 * time.Second

// Client asks an external mold service whether equipment fits a machine.
//
// Advisory lookups fired during a drag are fire-and-forget: Peek answers
// from the cache and, on a miss, launches at most one background request
// per (mold, machine) pair so a fast pointer never causes a request storm.
// Resolve performs one blocking request and is intended to be called once
// per commit.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *answerCache
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// ClientOption adjusts optional client behaviour.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, primarily for
// tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithCacheTTL adjusts how long advisory answers are trusted.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = newAnswerCache(ttl, 0, nil)
	}
}

// WithLogger routes background refresh failures to the given logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client for the mold service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultRequestTimeout},
		cache:      newAnswerCache(0, 0, nil),
		logger:     slog.Default(),
		inFlight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Peek reports the cached answer for the pair. On a cache miss it starts a
// single background refresh and reports unknown; the caller treats unknown
// as compatible because the advisory highlight must never block a drag.
func (c *Client) Peek(moldCode, machineID string) (bool, bool) {
	key := cacheKey(moldCode, machineID)
	if compatible, ok := c.cache.Get(key); ok {
		return compatible, true
	}

	c.mu.Lock()
	_, busy := c.inFlight[key]
	if !busy {
		c.inFlight[key] = struct{}{}
	}
	c.mu.Unlock()

	if !busy {
		go c.refresh(moldCode, machineID, key)
	}
	return false, false
}

// Resolve performs one blocking lookup. Errors propagate so the commit
// path can reject the move instead of guessing.
func (c *Client) Resolve(ctx context.Context, moldCode, machineID string) (bool, error) {
	compatible, err := c.fetch(ctx, moldCode, machineID)
	if err != nil {
		return false, err
	}
	c.cache.Store(cacheKey(moldCode, machineID), compatible)
	return compatible, nil
}

// Invalidate drops all cached answers, e.g. after the mold table changes.
func (c *Client) Invalidate() {
	c.cache.Invalidate()
}

func (c *Client) refresh(moldCode, machineID, key string) {
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
	defer cancel()

	compatible, err := c.fetch(ctx, moldCode, machineID)
	if err != nil {
		// Advisory path: drop the result, a later Peek retries.
		c.logger.Warn("compatibility refresh failed", "mold", moldCode, "machine", machineID, "error", err)
		return
	}
	c.cache.Store(key, compatible)
}

func (c *Client) fetch(ctx context.Context, moldCode, machineID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/compatibility?mold=%s&machine=%s",
		c.baseURL, url.QueryEscape(moldCode), url.QueryEscape(machineID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("compat: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("compat: query mold service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("compat: mold service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Compatible bool `json:"compatible"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("compat: decode response: %w", err)
	}
	return payload.Compatible, nil
}
