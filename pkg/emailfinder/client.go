// Package emailfinder provides a client for the Hunter email finder API.
package emailfinder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the email finder operations.
type Client interface {
	// FindEmail looks up the most likely email address for a person at a
	// company domain, with a 0-1 confidence.
	FindEmail(ctx context.Context, fullName, domain string) (*FindResult, error)
}

// FindResult is a single email lookup outcome.
type FindResult struct {
	Email      string  `json:"email"`
	Confidence float64 `json:"confidence"`
}

// findResponse is the raw Hunter email-finder payload.
type findResponse struct {
	Data struct {
		Email string `json:"email"`
		Score int    `json:"score"`
	} `json:"data"`
	Errors []struct {
		Details string `json:"details"`
	} `json:"errors"`
}

// Option configures the finder client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new email finder client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.hunter.io",
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) FindEmail(ctx context.Context, fullName, domain string) (*FindResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "emailfinder: rate limit wait")
	}

	q := url.Values{}
	q.Set("full_name", fullName)
	q.Set("domain", domain)
	q.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "/v2/email-finder?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "emailfinder: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "emailfinder: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "emailfinder: read response body")
	}

	if resp.StatusCode == http.StatusNotFound {
		return &FindResult{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("emailfinder: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed findResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "emailfinder: parse response")
	}
	if len(parsed.Errors) > 0 {
		return nil, eris.Errorf("emailfinder: api error: %s", parsed.Errors[0].Details)
	}

	return &FindResult{
		Email:      parsed.Data.Email,
		Confidence: float64(parsed.Data.Score) / 100,
	}, nil
}
