package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const introspectTimeout = 5 * time.Second

// IntrospectionOption configures the client.
type IntrospectionOption func(*IntrospectionClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) IntrospectionOption {
	return func(c *IntrospectionClient) {
		c.httpClient = httpClient
	}
}

// IntrospectionClient resolves a bearer credential against an external
// identity provider. One round trip per call; any non-2xx response is a
// verification failure, never a silent pass-through.
type IntrospectionClient struct {
	url        string
	httpClient *http.Client
}

// NewIntrospectionClient creates a client for the given userinfo endpoint.
func NewIntrospectionClient(url string, opts ...IntrospectionOption) *IntrospectionClient {
	c := &IntrospectionClient{
		url:        strings.TrimSuffix(strings.TrimSpace(url), "/"),
		httpClient: &http.Client{Timeout: introspectTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Introspect forwards the credential and returns the claims the provider
// reports for it.
func (c *IntrospectionClient) Introspect(ctx context.Context, token string) (Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("introspection request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("introspection call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrInvalidToken
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("introspection response: %w", err)
	}
	var claims Claims
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
