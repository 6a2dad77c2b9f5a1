// Package weather looks up a short description of current weather.
package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultURL is the wttr.in service.
const DefaultURL = "https://wttr.in"

// Unavailable is returned whenever the weather cannot be determined.
const Unavailable = "Weather information unavailable"

// Client queries a wttr.in-compatible service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a weather client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: &http.Client{Timeout: timeout}}
}

// Describe returns a one-line description such as "Partly cloudy, +24°C"
// for place, or Unavailable on any failure.
func (c *Client) Describe(ctx context.Context, place string) string {
	place = strings.TrimSpace(place)
	if place == "" {
		return Unavailable
	}
	desc, err := c.describe(ctx, place)
	if err != nil {
		slog.Warn("weather lookup failed", "place", place, "error", err)
		return Unavailable
	}
	return desc
}

func (c *Client) describe(ctx context.Context, place string) (string, error) {
	u := c.BaseURL + "/" + url.PathEscape(place) + "?format=" + url.QueryEscape("%C, %t")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Accept-Language", "en")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	desc := strings.TrimSpace(string(body))
	if desc == "" || strings.Contains(desc, "\n") || strings.HasPrefix(desc, "<") {
		return "", fmt.Errorf("unexpected response %q", truncate(desc, 80))
	}
	return desc, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
