// Package engsel is the HTTP client for the provider's store and payment API.
package engsel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/kuota/internal/common"
	"github.com/Veraticus/kuota/internal/config"
	"github.com/Veraticus/kuota/internal/model"
	"github.com/Veraticus/kuota/internal/service"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the backend on behalf of one session.
type Client struct {
	httpClient *http.Client
	limiter    *throttle
	families   *familyCache
	now        func() time.Time
	baseURL    string
	apiKey     string
	session    model.Session
	retry      service.RetryOptions
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPTransport replaces the transport underneath the session's bearer auth.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if t, ok := c.httpClient.Transport.(*oauth2.Transport); ok {
			t.Base = rt
		}
	}
}

// WithRetryOptions replaces the retry policy for read-only lookups.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(c *Client) { c.retry = opts }
}

// WithClock replaces the clock used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for cfg authenticated as session.
func NewClient(cfg config.APIConfig, session model.Session, opts ...Option) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: session.IDToken,
		TokenType:   "Bearer",
	})

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: source,
				Base:   http.DefaultTransport,
			},
		},
		limiter:  newThrottle(cfg.RequestsPerMinute),
		families: newFamilyCache(0),
		now:      time.Now,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.Key,
		session:  session,
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close drops idle keep-alive connections to the backend.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// post sends payload to path and returns the raw status code and decoded
// envelope. Errors are tagged as transient or permanent for WithRetry.
func (c *Client) post(ctx context.Context, path string, payload any) (int, *envelope, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return 0, nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, common.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("x-request-id", uuid.NewString())
	req.Header.Set("x-request-at", c.now().UTC().Format(time.RFC3339))

	slog.Debug("Calling backend", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, common.Transient(fmt.Errorf("request to %s failed: %w", path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, common.Transient(fmt.Errorf("failed to read response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return resp.StatusCode, nil, common.Permanent(fmt.Errorf("%w: %s", common.ErrUnauthorized, path))
	case resp.StatusCode == http.StatusTooManyRequests:
		after := parseRetryAfter(resp.Header.Get("Retry-After"), c.now())
		c.limiter.slowDown(after)
		return resp.StatusCode, nil, common.RateLimited(after)
	case resp.StatusCode >= 500:
		return resp.StatusCode, nil, common.Transient(fmt.Errorf("backend error %d: %s", resp.StatusCode, snippet(raw)))
	}

	if decodeErr != nil {
		return resp.StatusCode, nil, common.Permanent(fmt.Errorf("malformed response (%d): %w", resp.StatusCode, decodeErr))
	}
	return resp.StatusCode, &env, nil
}

// lookup posts payload and decodes a SUCCESS envelope's data into out,
// retrying transient failures.
func (c *Client) lookup(ctx context.Context, path string, payload, out any) error {
	return common.WithRetry(ctx, func() error {
		status, env, err := c.post(ctx, path, payload)
		if err != nil {
			return err
		}
		if status >= 400 || env.Status != string(model.StatusSuccess) {
			return common.Permanent(fmt.Errorf("%s returned %s (%d): %s", path, env.Status, status, env.Message))
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return common.Permanent(fmt.Errorf("%s: %w", path, common.ErrEmptyPayload))
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return common.Permanent(fmt.Errorf("failed to decode %s data: %w", path, err))
		}
		return nil
	}, c.retry)
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "…"
	}
	return s
}
