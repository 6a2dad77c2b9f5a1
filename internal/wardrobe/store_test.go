package wardrobe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/omara/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "wardrobe_data.json"), filepath.Join(dir, "wardrobe_images"))
}

func TestLoadMissingDocument(t *testing.T) {
	s := newTestStore(t)

	items := s.Load()
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestLoadEmptyAndCorruptDocument(t *testing.T) {
	for name, content := range map[string]string{
		"empty":      "",
		"whitespace": "  \n\t",
		"corrupt":    `[{"id": "CLO001",`,
		"object":     `{"id": "CLO001"}`,
		"null":       `null`,
		"bad field":  `[{"id": 12}]`,
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			if err := os.WriteFile(s.Path(), []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}

			items := s.Load()
			if len(items) != 0 {
				t.Errorf("expected empty wardrobe, got %d items", len(items))
			}
		})
	}
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 12; i++ {
		item, err := s.Append(model.ClothingItem{Type: model.TypeTop, Color: "Red", Style: "Tee"})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		want := fmt.Sprintf("CLO%03d", i)
		if item.ID != want {
			t.Errorf("append %d: expected id %s, got %s", i, want, item.ID)
		}
	}
}

func TestAppendThenLoad(t *testing.T) {
	s := newTestStore(t)

	in := model.ClothingItem{
		Type:  model.TypeBottom,
		Color: "Black",
		Style: "Jeans Slim Fit",
	}

	stored, err := s.Append(in)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	items := s.Load()
	matches := 0
	for _, item := range items {
		if item.ID == stored.ID {
			matches++
			if diff := cmp.Diff(stored, item); diff != "" {
				t.Errorf("loaded item differs (-stored +loaded):\n%s", diff)
			}
		}
	}
	if matches != 1 {
		t.Errorf("expected stored item exactly once, found %d", matches)
	}
}

func TestAppendKeepsExtraFields(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte(`[{"id":"CLO001","type":"Top","color":"Blue","style":"Shirt","brand":"Acme","size":{"eu":40}}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Append(model.ClothingItem{Type: model.TypeShoes}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	items := s.Load()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := string(items[0].Extra["brand"]); got != `"Acme"` {
		t.Errorf("expected brand to survive rewrite, got %s", got)
	}
	if got := string(items[0].Extra["size"]); got != `{"eu":40}` {
		t.Errorf("expected size to survive rewrite, got %s", got)
	}
}

func TestAppendExplicitID(t *testing.T) {
	s := newTestStore(t)

	item, err := s.Append(model.ClothingItem{ID: "CLO010", Type: model.TypeDress})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if item.ID != "CLO010" {
		t.Errorf("expected explicit id kept, got %s", item.ID)
	}

	next, err := s.Append(model.ClothingItem{Type: model.TypeDress})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if next.ID != "CLO011" {
		t.Errorf("expected CLO011 after explicit CLO010, got %s", next.ID)
	}

	_, err = s.Append(model.ClothingItem{ID: "CLO010"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if n := len(s.Load()); n != 2 {
		t.Errorf("duplicate append must not change the wardrobe, got %d items", n)
	}
}

func TestAppendRejectsUnsafeIDs(t *testing.T) {
	s := newTestStore(t)
	outside := filepath.Dir(s.ImageDir())

	for _, id := range []string{"../escaped", "a/b", `a\b`, "..", ".hidden", "CLO 1", strings.Repeat("x", 65)} {
		_, err := s.AppendWithImage(model.ClothingItem{ID: id, Type: model.TypeTop}, []byte("png"), ".png")
		if !errors.Is(err, ErrInvalidID) {
			t.Errorf("AppendWithImage(%q): expected ErrInvalidID, got %v", id, err)
		}
	}

	if _, err := os.Stat(filepath.Join(outside, "escaped.png")); !os.IsNotExist(err) {
		t.Errorf("image written outside the image directory: %v", err)
	}
	if n := len(s.Load()); n != 0 {
		t.Errorf("rejected ids must not be stored, got %d items", n)
	}

	item, err := s.AppendWithImage(model.ClothingItem{ID: "my-shirt_2", Type: model.TypeTop}, []byte("png"), ".png")
	if err != nil {
		t.Fatalf("AppendWithImage: %v", err)
	}
	if _, ok := s.ImagePath(item); !ok {
		t.Errorf("expected image inside the image directory, got %q", item.ImagePath)
	}
}

func TestHugeExplicitIDDoesNotWrapSequence(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Append(model.ClothingItem{ID: "CLO9223372036854775807"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	a, err := s.Append(model.ClothingItem{Type: model.TypeTop})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	b, err := s.Append(model.ClothingItem{Type: model.TypeTop})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if a.ID != "CLO001" || b.ID != "CLO002" {
		t.Errorf("expected CLO001, CLO002; got %s, %s", a.ID, b.ID)
	}
}

func TestSequenceExhausted(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Append(model.ClothingItem{ID: FormatID(MaxSeq)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	_, err := s.Append(model.ClothingItem{Type: model.TypeTop})
	if !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("expected ErrSequenceExhausted, got %v", err)
	}
	if n := len(s.Load()); n != 1 {
		t.Errorf("failed append must not change the wardrobe, got %d items", n)
	}
}

func TestDeleteRemovesItem(t *testing.T) {
	s := newTestStore(t)

	a, _ := s.Append(model.ClothingItem{Type: model.TypeTop, Color: "Blue", Style: "Shirt"})
	b, _ := s.Append(model.ClothingItem{Type: model.TypeBottom, Color: "Grey", Style: "Chinos"})
	if a.ID != "CLO001" || b.ID != "CLO002" {
		t.Fatalf("unexpected ids %s, %s", a.ID, b.ID)
	}

	if err := s.Delete("CLO001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	items := s.Load()
	if diff := cmp.Diff([]model.ClothingItem{b}, items); diff != "" {
		t.Errorf("unexpected wardrobe after delete (-want +got):\n%s", diff)
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.Append(model.ClothingItem{Type: model.TypeTop})
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete("CLO999"); err != nil {
		t.Fatalf("Delete unknown id: %v", err)
	}

	after, _ := os.ReadFile(s.Path())
	if string(before) != string(after) {
		t.Error("deleting an unknown id must leave the document unchanged")
	}
}

func TestDeleteOnMissingDocument(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("CLO001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("no-op delete should not create the document")
	}
}

func TestDeletedIDIsNotReused(t *testing.T) {
	s := newTestStore(t)
	s.Append(model.ClothingItem{Type: model.TypeTop})
	last, _ := s.Append(model.ClothingItem{Type: model.TypeTop})

	if err := s.Delete(last.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	next, err := s.Append(model.ClothingItem{Type: model.TypeTop})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if next.ID != "CLO003" {
		t.Errorf("expected CLO003 after deleting CLO002, got %s", next.ID)
	}
}

func TestSequenceFallsBackToDocument(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte(`[{"id":"CLO001"},{"id":"CLO007"},{"id":"custom"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	item, err := s.Append(model.ClothingItem{Type: model.TypeTop})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if item.ID != "CLO008" {
		t.Errorf("expected CLO008, got %s", item.ID)
	}
}

func TestAppendWithImage(t *testing.T) {
	s := newTestStore(t)

	item, err := s.AppendWithImage(model.ClothingItem{Type: model.TypeShoes}, []byte("png bytes"), ".PNG")
	if err != nil {
		t.Fatalf("AppendWithImage: %v", err)
	}

	want := filepath.Join(s.ImageDir(), "CLO001.png")
	if item.ImagePath != want {
		t.Errorf("expected image path %s, got %s", want, item.ImagePath)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading image: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("unexpected image content %q", data)
	}

	path, ok := s.ImagePath(item)
	if !ok || path != want {
		t.Errorf("ImagePath = %q, %v", path, ok)
	}
}

func TestDeleteRemovesImage(t *testing.T) {
	s := newTestStore(t)
	item, err := s.AppendWithImage(model.ClothingItem{Type: model.TypeTop}, []byte("img"), "png")
	if err != nil {
		t.Fatalf("AppendWithImage: %v", err)
	}

	if err := s.Delete(item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(item.ImagePath); !os.IsNotExist(err) {
		t.Errorf("expected image to be removed, stat err = %v", err)
	}
}

func TestDeleteToleratesMissingImage(t *testing.T) {
	s := newTestStore(t)
	item, _ := s.AppendWithImage(model.ClothingItem{Type: model.TypeTop}, []byte("img"), ".jpg")
	os.Remove(item.ImagePath)

	if _, ok := s.ImagePath(item); ok {
		t.Error("expected missing image to be reported")
	}
	if err := s.Delete(item.ID); err != nil {
		t.Fatalf("Delete with missing image: %v", err)
	}
	if len(s.Load()) != 0 {
		t.Error("expected record removed even though image was missing")
	}
}

func TestDeleteLeavesForeignFiles(t *testing.T) {
	s := newTestStore(t)
	outside := filepath.Join(t.TempDir(), "keep.txt")
	os.WriteFile(outside, []byte("keep"), 0o644)

	item, _ := s.Append(model.ClothingItem{Type: model.TypeTop, ImagePath: outside})
	if err := s.Delete(item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside image dir must survive delete: %v", err)
	}
}

func TestCorruptDocumentBackedUpBeforeRewrite(t *testing.T) {
	s := newTestStore(t)
	os.WriteFile(s.Path(), []byte("not json"), 0o644)

	item, err := s.Append(model.ClothingItem{Type: model.TypeTop})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if item.ID != "CLO001" {
		t.Errorf("expected CLO001, got %s", item.ID)
	}

	matches, _ := filepath.Glob(s.Path() + ".corrupt-*")
	if len(matches) != 1 {
		t.Fatalf("expected one backup, got %v", matches)
	}
	data, _ := os.ReadFile(matches[0])
	if string(data) != "not json" {
		t.Errorf("backup content = %q", data)
	}
}

func TestDocumentIsIndentedArray(t *testing.T) {
	s := newTestStore(t)
	s.Append(model.ClothingItem{Type: model.TypeTop})
	s.Delete("CLO001")

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty array after deleting last item, got %q", data)
	}
}

func TestConcurrentAppendsGetUniqueIDs(t *testing.T) {
	s := newTestStore(t)

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := s.Append(model.ClothingItem{Type: model.TypeAccessory})
			if err != nil {
				t.Errorf("Append: %v", err)
				return
			}
			ids <- item.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if got := len(s.Load()); got != n {
		t.Errorf("expected %d items, got %d", n, got)
	}
}

func TestWardrobeScenario(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Append(model.ClothingItem{Type: model.TypeTop, Color: "Blue", Style: "Shirt"})
	if err != nil || a.ID != "CLO001" {
		t.Fatalf("append A: id=%s err=%v", a.ID, err)
	}
	b, err := s.Append(model.ClothingItem{Type: model.TypeBottom, Color: "Black", Style: "Jeans"})
	if err != nil || b.ID != "CLO002" {
		t.Fatalf("append B: id=%s err=%v", b.ID, err)
	}
	if err := s.Delete("CLO001"); err != nil {
		t.Fatalf("delete A: %v", err)
	}

	items := s.Load()
	if len(items) != 1 || items[0].ID != "CLO002" {
		t.Errorf("expected only CLO002, got %+v", items)
	}
	if _, ok := s.Get("CLO001"); ok {
		t.Error("CLO001 should be gone")
	}
}
