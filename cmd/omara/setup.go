package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/bgremove"
	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/llm"
	"github.com/erazemk/omara/internal/staging"
	"github.com/erazemk/omara/internal/store"
)

// ensureOwner creates the owner account when the database has none and
// returns the generated password, or "" if an account already existed.
func ensureOwner(ctx context.Context, database *sql.DB, username string) (string, error) {
	n, err := store.CountUsers(ctx, database)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	if _, err := store.CreateUser(ctx, database, username, hash); err != nil {
		return "", fmt.Errorf("creating owner: %w", err)
	}
	return password, nil
}

func printOwner(username, password string) {
	fmt.Println("Owner account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// newGenerator picks the model provider. A provider without an API key is
// replaced by llm.Disabled so the wardrobe still works without it.
func newGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case llm.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("OPENAI_API_KEY not set, classification and feedback disabled")
			return llm.Disabled{Provider: llm.ProviderOpenAI}, nil
		}
		return llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.HTTPTimeout,
		}), nil
	default:
		gen, err := llm.NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if errors.Is(err, llm.ErrNotConfigured) {
			slog.Warn("GOOGLE_API_KEY not set, classification and feedback disabled")
			return llm.Disabled{Provider: llm.ProviderGemini}, nil
		}
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
}

func newRemover(cfg config.Config) bgremove.Remover {
	if cfg.RemoveBGAPIKey == "" {
		slog.Info("REMOVEBG_API_KEY not set, storing photos as uploaded")
		return bgremove.Passthrough{}
	}
	return bgremove.NewClient(cfg.RemoveBGURL, cfg.RemoveBGAPIKey, cfg.HTTPTimeout)
}

// sweep removes abandoned uploads and expired token revocations every
// interval until ctx is done.
func sweep(ctx context.Context, uploads *staging.Area, database *sql.DB, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := uploads.Sweep(ttl); n > 0 {
				slog.Info("removed abandoned uploads", "count", n)
			}
			if _, err := store.PruneRevokedTokens(ctx, database, now); err != nil {
				slog.Warn("pruning revoked tokens failed", "error", err)
			}
		}
	}
}
