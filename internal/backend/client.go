// Package backend is the client of the remote admin backend every resource is proxied to.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTimeout    = 30 * time.Second
	assertionLifetime = 60 * time.Second
	maxErrorBody      = 4 << 10

	headerAPIKey = "X-API-Key"
)

// Client talks JSON to the backend. The zero value is not usable, see New.
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	timeout         time.Duration
	apiKey          string
	assertionSecret []byte
	issuer          string
	now             func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key as X-API-Key on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request, zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAssertion signs a short lived HS256 token naming the acting operator.
func WithAssertion(secret, issuer string) Option {
	return func(c *Client) {
		if secret != "" {
			c.assertionSecret = []byte(secret)
			c.issuer = issuer
		}
	}
}

// New creates a client for the backend at baseURL, e.g. http://backend:4000/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL: u,
		timeout: defaultTimeout,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}

	return c, nil
}

// BaseURL returns the configured backend url.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}

	return c.baseURL.String()
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, "health", http.MethodGet, []string{"health"}, nil, nil)

	return err
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(
	ctx context.Context, resource, method string, segments []string, query url.Values, body []byte,
) ([]byte, error) {
	if c == nil {
		requestsTotal.WithLabelValues(resource, method, outcomeUnreachable).Inc()

		return nil, fmt.Errorf("%w: %w", ErrUnreachable, ErrClientNotInitialized)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, segments, query, body)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	requestDuration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(resource, method, outcomeUnreachable).Inc()

		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(resource, method, outcomeUnreachable).Inc()

		return nil, fmt.Errorf("%w: reading response: %w", ErrUnreachable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		requestsTotal.WithLabelValues(resource, method, outcomeError).Inc()

		return nil, &Error{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	requestsTotal.WithLabelValues(resource, method, outcomeOK).Inc()

	return data, nil
}

func (c *Client) newRequest(
	ctx context.Context, method string, segments []string, query url.Values, body []byte,
) (*http.Request, error) {
	u := c.baseURL.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build backend request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	if len(c.assertionSecret) > 0 {
		token, err := c.assertion(ctx)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// assertion signs the operator of ctx, requests without one carry no subject.
func (c *Client) assertion(ctx context.Context) (string, error) {
	now := c.now()

	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
	}

	if id, ok := OperatorFrom(ctx); ok {
		claims.Subject = strconv.FormatUint(id, 10)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.assertionSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign operator assertion: %w", err)
	}

	return signed, nil
}

// errorMessage picks "message", then "error", then the raw body.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Error != "":
			return payload.Error
		}
	}

	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}

	return http.StatusText(status)
}

// isTimeout is used by the engine to tell a slow backend from a refused connection in logs.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
