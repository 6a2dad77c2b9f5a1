// Package llm sends prompts, optionally with images, to a language model
// and returns the model's text.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Attachment is binary content sent alongside a prompt.
type Attachment struct {
	Data []byte
	MIME string
}

// Generator produces text for a prompt. Each call is a single round trip.
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error)
}

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = errors.New("model returned no text")

// ErrNotConfigured is returned by a generator without credentials.
var ErrNotConfigured = errors.New("model provider not configured")

// Providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Disabled stands in for a provider without credentials. Every call fails
// with ErrNotConfigured, so the server can run without model features.
type Disabled struct {
	Provider string
}

// Generate always fails.
func (d Disabled) Generate(context.Context, string, ...Attachment) (string, error) {
	return "", fmt.Errorf("%s: %w", d.Provider, ErrNotConfigured)
}
