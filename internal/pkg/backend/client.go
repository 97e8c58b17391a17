package backend

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

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
)

const maxBodySize = 4 << 20

// API is the subset of backend operations services depend on.
type API interface {
	Get(ctx context.Context, token string, path string, out any) error
	Post(ctx context.Context, token string, path string, body any, out any) error
}

// Client talks JSON to the HR backend on behalf of a session. Every request
// carries the caller's bearer token; the client never retries.
type Client struct {
	baseURL string
	timeout time.Duration
	base    *http.Client
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		base:    &http.Client{Timeout: timeout},
	}
}

// httpClient returns an http.Client that attaches the session token.
func (c *Client) httpClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.base
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = c.timeout
	return hc
}

// Get fetches path and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, token string, path string, out any) error {
	return c.Do(ctx, token, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out (when non-nil)
func (c *Client) Post(ctx context.Context, token string, path string, body any, out any) error {
	return c.Do(ctx, token, http.MethodPost, path, body, out)
}

func (c *Client) Do(ctx context.Context, token string, method string, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := chiMiddleware.GetReqID(ctx); reqID != "" {
		req.Header.Set(chiMiddleware.RequestIDHeader, reqID)
	}

	start := time.Now()
	resp, err := c.httpClient(ctx, token).Do(req)
	if err != nil {
		slog.Error("Backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	slog.Debug("Backend request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    ExtractErrorMessage(resp.StatusCode, raw),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
