// Package staging holds uploaded images between analysis and saving.
//
// Analysing an upload returns a token; saving the item hands the token back.
// Each upload can be taken once. Abandoned uploads are removed by Sweep.
package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown, malformed or already used tokens.
var ErrNotFound = errors.New("staged upload not found")

// Area is a directory of staged uploads.
type Area struct {
	dir string
}

// New returns a staging area rooted at dir.
func New(dir string) *Area {
	return &Area{dir: dir}
}

// Stage stores data and returns its token.
func (a *Area) Stage(data []byte, ext string) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	token := uuid.NewString()
	if err := os.WriteFile(filepath.Join(a.dir, token+ext), data, 0o600); err != nil {
		return "", fmt.Errorf("writing staged upload: %w", err)
	}
	return token, nil
}

// Take returns and removes the upload for token, with its extension. The
// file is claimed by renaming it first, so concurrent calls for one token
// succeed at most once.
func (a *Area) Take(token string) ([]byte, string, error) {
	path, err := a.find(token)
	if err != nil {
		return nil, "", err
	}

	claimed := filepath.Join(a.dir, ".taken-"+uuid.NewString())
	if err := os.Rename(path, claimed); err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("claiming staged upload: %w", err)
	}
	defer func() {
		if err := os.Remove(claimed); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove staged upload", "path", claimed, "error", err)
		}
	}()

	data, err := os.ReadFile(claimed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("reading staged upload: %w", err)
	}
	return data, filepath.Ext(path), nil
}

// find locates the file for token. Tokens must be UUIDs, which keeps them
// from naming paths outside the staging directory.
func (a *Area) find(token string) (string, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return "", ErrNotFound
	}
	matches, err := filepath.Glob(filepath.Join(a.dir, id.String()+"*"))
	if err != nil {
		return "", fmt.Errorf("looking up staged upload: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNotFound
	}
	return matches[0], nil
}

// Sweep removes uploads older than maxAge and returns how many it removed.
func (a *Area) Sweep(maxAge time.Duration) int {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read staging directory", "error", err)
		}
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.dir, e.Name())); err != nil {
			slog.Warn("failed to remove stale upload", "name", e.Name(), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("stale uploads removed", "count", removed)
	}
	return removed
}
