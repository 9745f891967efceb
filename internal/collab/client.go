// Package collab talks to the companion service that owns stats and the
// collections related to an account. Both responses are opaque JSON objects
// merged into the index page.
package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client calls the collaborator over HTTP. A Client with an empty base URL
// returns empty results without making requests.
type Client struct {
	base    string
	http    *http.Client
	breaker *Breaker
}

// New creates a client for baseURL. After five consecutive failures calls
// fail fast with ErrCircuitOpen for 30 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewBreaker(5, 30*time.Second),
	}
}

// Enabled reports whether a collaborator is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.base != ""
}

// Stats returns the collaborator's aggregate stats.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "/stats", nil)
}

// Related returns the collections related to accountID; 0 asks for the
// anonymous view.
func (c *Client) Related(ctx context.Context, accountID int64) (map[string]any, error) {
	q := url.Values{}
	if accountID != 0 {
		q.Set("account_id", strconv.FormatInt(accountID, 10))
	}
	return c.getJSON(ctx, "/related", q)
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values) (map[string]any, error) {
	if !c.Enabled() {
		return map[string]any{}, nil
	}

	var out map[string]any
	err := c.breaker.ExecuteContext(ctx, func() error {
		var err error
		out, err = c.fetch(ctx, path, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, path string, q url.Values) (map[string]any, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collab %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("collab %s: unexpected status %d", path, resp.StatusCode)
	}

	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("collab %s: decode: %w", path, err)
	}
	return out, nil
}
