package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const apiPrefix = "/api/v0"

// ResolveStreamURL turns the streamUrl returned by SubmitMessage into an
// absolute URL. Relative URLs have their first /api/v0 removed because the
// base URL already ends with it.
func (c *Client) ResolveStreamURL(streamURL string) string {
	if strings.HasPrefix(streamURL, "http://") || strings.HasPrefix(streamURL, "https://") {
		return streamURL
	}
	return c.baseURL + strings.Replace(streamURL, apiPrefix, "", 1)
}

// OpenStream starts the event stream for a submitted message. The caller owns
// the returned body; cancelling ctx also aborts it.
func (c *Client) OpenStream(ctx context.Context, streamURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ResolveStreamURL(streamURL), nil)
	if err != nil {
		return nil, &APIError{Code: CodeStreamUnavailable, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(clientIDHeader, c.clientID)

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, &APIError{Code: CodeStreamUnavailable, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &APIError{
			Status:  resp.StatusCode,
			Code:    CodeStreamUnavailable,
			Message: fmt.Sprintf("stream request failed (%d)", resp.StatusCode),
		}
	}

	return resp.Body, nil
}
