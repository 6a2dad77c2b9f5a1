// Package wardrobe persists clothing items to a single JSON document.
//
// Every mutation rewrites the whole document. Writes go to a temporary file
// in the same directory and are renamed into place, so a crash leaves either
// the old or the new document. A mutex serialises load-modify-store within
// one process; several processes sharing a document can still lose updates.
package wardrobe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/omara/internal/model"
)

// IDPrefix prefixes every generated item id.
const IDPrefix = "CLO"

// MaxSeq is the largest sequence number the store issues or honours.
const MaxSeq = 999_999_999

var (
	// ErrDuplicateID is returned when an explicitly set id is already stored.
	ErrDuplicateID = errors.New("item id already exists")
	// ErrInvalidID is returned for explicit ids that are not a plain name of
	// letters, digits, '-' and '_'. Ids name image files.
	ErrInvalidID = errors.New("invalid item id")
	// ErrSequenceExhausted is returned when no generated id is left.
	ErrSequenceExhausted = errors.New("item id sequence exhausted")
)

// Store owns the clothing item collection.
type Store struct {
	mu       sync.Mutex
	path     string
	seqPath  string
	imageDir string
}

// New returns a store backed by the document at path, with item images
// kept under imageDir.
func New(path, imageDir string) *Store {
	return &Store{
		path:     path,
		seqPath:  path + ".seq",
		imageDir: imageDir,
	}
}

// Path returns the backing document path.
func (s *Store) Path() string { return s.path }

// ImageDir returns the directory holding item images.
func (s *Store) ImageDir() string { return s.imageDir }

// Load returns all stored items in document order. A missing, empty or
// unparseable document yields an empty slice.
func (s *Store) Load() []model.ClothingItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, _ := s.read()
	return items
}

// Get returns the first item with the given id.
func (s *Store) Get(id string) (model.ClothingItem, bool) {
	for _, item := range s.Load() {
		if item.ID == id {
			return item, true
		}
	}
	return model.ClothingItem{}, false
}

// Append stores item, assigning the next sequential id when item.ID is
// empty, and returns the stored record.
func (s *Store) Append(item model.ClothingItem) (model.ClothingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, corrupt := s.read()
	item, err := s.assignID(items, item)
	if err != nil {
		return model.ClothingItem{}, err
	}
	if err := s.commit(append(items, item), corrupt); err != nil {
		return model.ClothingItem{}, err
	}

	slog.Info("item saved", "id", item.ID, "type", item.Type)
	return item, nil
}

// AppendWithImage stores item together with its image. The image is written
// to the image directory as <id><ext> and item.ImagePath points at it. If
// the document cannot be written the image is removed again.
func (s *Store) AppendWithImage(item model.ClothingItem, image []byte, ext string) (model.ClothingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, corrupt := s.read()
	item, err := s.assignID(items, item)
	if err != nil {
		return model.ClothingItem{}, err
	}

	imagePath, err := s.writeImage(item.ID, ext, image)
	if err != nil {
		return model.ClothingItem{}, err
	}
	item.ImagePath = imagePath

	if err := s.commit(append(items, item), corrupt); err != nil {
		if rmErr := os.Remove(imagePath); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("failed to remove orphaned image", "path", imagePath, "error", rmErr)
		}
		return model.ClothingItem{}, err
	}

	slog.Info("item saved", "id", item.ID, "type", item.Type, "image", imagePath)
	return item, nil
}

// Delete removes the first item with the given id and its image file.
// An unknown id is logged and ignored. A missing image is logged and
// ignored. Only a failed document write is returned as an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, corrupt := s.read()
	idx := -1
	for i, item := range items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		slog.Warn("delete: item not found", "id", id)
		return nil
	}

	removed := items[idx]
	rest := make([]model.ClothingItem, 0, len(items)-1)
	rest = append(rest, items[:idx]...)
	rest = append(rest, items[idx+1:]...)

	if err := s.commit(rest, corrupt); err != nil {
		return err
	}
	s.removeImage(removed)

	slog.Info("item deleted", "id", id)
	return nil
}

// read loads the document. The second result reports whether the document
// existed but could not be parsed.
func (s *Store) read() ([]model.ClothingItem, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read wardrobe document", "path", s.path, "error", err)
		}
		return []model.ClothingItem{}, false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.ClothingItem{}, false
	}

	var items []model.ClothingItem
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("wardrobe document is corrupt, treating as empty", "path", s.path, "error", err)
		return []model.ClothingItem{}, true
	}
	if items == nil {
		items = []model.ClothingItem{}
	}
	return items, false
}

// commit rewrites the document with items. A corrupt document is copied
// aside first so the rewrite does not destroy it.
func (s *Store) commit(items []model.ClothingItem, corrupt bool) error {
	if corrupt {
		s.backupCorrupt()
	}

	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding wardrobe: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing wardrobe: %w", err)
	}
	return nil
}

func (s *Store) backupCorrupt() {
	backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	data, err := os.ReadFile(s.path)
	if err != nil {
		slog.Warn("failed to read corrupt wardrobe for backup", "error", err)
		return
	}
	if err := writeFileAtomic(backup, data); err != nil {
		slog.Warn("failed to back up corrupt wardrobe", "error", err)
		return
	}
	slog.Warn("corrupt wardrobe document backed up", "backup", backup)
}

// assignID fills item.ID from the sequence when empty, or checks an
// explicit id for duplicates.
func (s *Store) assignID(items []model.ClothingItem, item model.ClothingItem) (model.ClothingItem, error) {
	if item.ID != "" {
		if !ValidID(item.ID) {
			return model.ClothingItem{}, fmt.Errorf("%w: %q", ErrInvalidID, item.ID)
		}
		for _, existing := range items {
			if existing.ID == item.ID {
				return model.ClothingItem{}, fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
			}
		}
		if n, ok := parseID(item.ID); ok && n > s.lastSeq(items) {
			if err := s.writeSeq(n); err != nil {
				return model.ClothingItem{}, err
			}
		}
		return item, nil
	}

	last := s.lastSeq(items)
	if last >= MaxSeq {
		return model.ClothingItem{}, ErrSequenceExhausted
	}
	next := last + 1
	if err := s.writeSeq(next); err != nil {
		return model.ClothingItem{}, err
	}
	item.ID = FormatID(next)
	return item, nil
}

// lastSeq is the highest sequence number ever issued: the larger of the
// persisted counter and the highest id in the document.
func (s *Store) lastSeq(items []model.ClothingItem) int {
	last := 0
	if data, err := os.ReadFile(s.seqPath); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && n > 0 && n <= MaxSeq {
			last = n
		}
	}
	for _, item := range items {
		if n, ok := parseID(item.ID); ok && n > last {
			last = n
		}
	}
	return last
}

func (s *Store) writeSeq(n int) error {
	if err := writeFileAtomic(s.seqPath, []byte(strconv.Itoa(n)+"\n")); err != nil {
		return fmt.Errorf("writing id sequence: %w", err)
	}
	return nil
}

// FormatID returns the item id for sequence number n.
func FormatID(n int) string {
	return fmt.Sprintf("%s%03d", IDPrefix, n)
}

// parseID extracts the sequence number from a generated id. Numbers above
// MaxSeq do not count as generated.
func parseID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, IDPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 || n > MaxSeq {
		return 0, false
	}
	return n, true
}

// ValidID reports whether an explicit id is safe to use as a file name.
func ValidID(id string) bool {
	if len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing file: %w", err)
	}
	return nil
}
