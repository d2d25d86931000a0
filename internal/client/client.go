// Package client talks to the AstroGuide HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const clientIDHeader = "X-Client-Id"

type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
	stream   *http.Client
	now      func() time.Time
}

type Option func(*Client)

// WithTimeout bounds request/response calls. Streams are never bounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithStreamHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.stream = hc
	}
}

func New(baseURL, clientID string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: 15 * time.Second},
		stream:   &http.Client{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(clientIDHeader, c.clientID)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Code: CodeNetworkError, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "api request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", c.now().Sub(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    CodeNetworkError,
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Err:     err,
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{
		Status:     resp.StatusCode,
		Code:       CodeUnknown,
		Message:    "request failed",
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
	}

	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		apiErr.Code = CodeNetworkError
		apiErr.Message = statusText(resp)
		return apiErr
	}

	if env.Error != nil {
		if env.Error.Code != "" {
			apiErr.Code = env.Error.Code
		}
		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}
		apiErr.RequestID = env.Error.RequestID
		apiErr.Details = env.Error.Details
	}
	if apiErr.IsRateLimited() && apiErr.Code == CodeUnknown {
		apiErr.Code = CodeRateLimited
	}
	return apiErr
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "network request failed"
}
