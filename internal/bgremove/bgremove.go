// Package bgremove removes photo backgrounds through an external service.
//
// Background removal is an enhancement: any failure returns the original
// image so callers can always continue.
package bgremove

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is the remove.bg API endpoint.
const DefaultURL = "https://api.remove.bg/v1.0/removebg"

// Remover strips the background from an image.
type Remover interface {
	// Remove returns the processed image, or data itself on failure.
	Remove(ctx context.Context, data []byte) []byte
}

// Passthrough is a Remover that returns images unchanged.
type Passthrough struct{}

// Remove returns data.
func (Passthrough) Remove(_ context.Context, data []byte) []byte { return data }

// Client calls a remove.bg-compatible HTTP API: a multipart POST with the
// image in the "image_file" field, authenticated by X-Api-Key, answered
// with the processed PNG.
type Client struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a client for the given endpoint.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{URL: url, APIKey: apiKey, HTTPClient: &http.Client{Timeout: timeout}}
}

// Remove sends data to the service. Without an API key, or on any error,
// data is returned unchanged.
func (c *Client) Remove(ctx context.Context, data []byte) []byte {
	if c.APIKey == "" {
		return data
	}
	out, err := c.remove(ctx, data)
	if err != nil {
		slog.Warn("background removal failed, keeping original image", "error", err)
		return data
	}
	return out
}

func (c *Client) remove(ctx context.Context, data []byte) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image_file", "image")
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.WriteField("size", "auto"); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Api-Key", c.APIKey)
	req.Header.Set("Accept", "image/png")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}
	if ct := http.DetectContentType(out); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("unexpected response content %s", ct)
	}
	return out, nil
}
