package wardrobe

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/erazemk/omara/internal/model"
)

// writeImage stores image data as <imageDir>/<id><ext> and returns the path.
func (s *Store) writeImage(id, ext string, data []byte) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	path := filepath.Join(s.imageDir, id+strings.ToLower(ext))
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path, nil
}

// removeImage deletes the image referenced by item, if any. Failures are
// logged, never returned.
func (s *Store) removeImage(item model.ClothingItem) {
	if item.ImagePath == "" {
		return
	}
	if !s.ownsImage(item.ImagePath) {
		slog.Warn("image outside image directory, not removing", "id", item.ID, "path", item.ImagePath)
		return
	}

	err := os.Remove(item.ImagePath)
	switch {
	case err == nil:
		slog.Info("image removed", "id", item.ID, "path", item.ImagePath)
	case os.IsNotExist(err):
		slog.Info("image already missing", "id", item.ID, "path", item.ImagePath)
	default:
		slog.Warn("failed to remove image", "id", item.ID, "path", item.ImagePath, "error", err)
	}
}

// ImagePath returns the image file for item if it exists inside the image
// directory. A missing or foreign file reports false.
func (s *Store) ImagePath(item model.ClothingItem) (string, bool) {
	if item.ImagePath == "" || !s.ownsImage(item.ImagePath) {
		return "", false
	}
	info, err := os.Stat(item.ImagePath)
	if err != nil || info.IsDir() {
		slog.Info("image missing", "id", item.ID, "path", item.ImagePath)
		return "", false
	}
	return item.ImagePath, true
}

// ownsImage reports whether path lies inside the image directory.
func (s *Store) ownsImage(path string) bool {
	dir, err := filepath.Abs(s.imageDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
