package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

// Client delivers payloads to operator-configured automation endpoints.
// Any 2xx status is success; no response body contract is assumed.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// PostJSON sends the payload as a JSON body.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	return c.post(ctx, url, "application/json", bytes.NewReader(body))
}

// PostForm sends the payload form-encoded, using `url` struct tags.
func (c *Client) PostForm(ctx context.Context, url string, payload interface{}) error {
	values, err := query.Values(payload)
	if err != nil {
		return fmt.Errorf("encode webhook form: %w", err)
	}
	return c.post(ctx, url, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
}

func (c *Client) post(ctx context.Context, url, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("webhook failed with status: %d", res.StatusCode)
	}
	return nil
}
