package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matheus3301/jobboard/internal/apperr"
)

// maxResponseBytes bounds how much of the service response is read.
const maxResponseBytes = 1 << 20

// Client calls the external resume-match endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a client for url, e.g. https://host/api/resume-match.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Match POSTs the request and returns the response body unchanged.
func (c *Client) Match(ctx context.Context, r Request) (json.RawMessage, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal resume-match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create resume-match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Unavailable("resume-match request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.Unavailable("read resume-match response", err)
	}
	switch {
	case resp.StatusCode >= 500:
		return nil, apperr.Unavailable(fmt.Sprintf("resume-match returned status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, apperr.Invalid(fmt.Sprintf("resume-match returned status %d", resp.StatusCode), string(raw))
	}
	if !json.Valid(raw) {
		return nil, apperr.Internal("resume-match returned invalid JSON", nil)
	}
	return json.RawMessage(raw), nil
}
