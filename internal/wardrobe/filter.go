package wardrobe

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/erazemk/omara/internal/model"
)

// Filter selects items. Empty criteria match everything.
type Filter struct {
	Types  []string
	Colors []string
	// Style matches case-insensitively anywhere in the item's style.
	Style string
}

// Apply returns the items matching f, in their original order.
func (f Filter) Apply(items []model.ClothingItem) []model.ClothingItem {
	fold := cases.Fold()
	style := fold.String(strings.TrimSpace(f.Style))
	out := make([]model.ClothingItem, 0, len(items))
	for _, item := range items {
		if len(f.Types) > 0 && !slices.Contains(f.Types, string(item.Type)) {
			continue
		}
		if len(f.Colors) > 0 && !slices.Contains(f.Colors, item.Color) {
			continue
		}
		if style != "" && !strings.Contains(fold.String(item.Style), style) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Facets lists the distinct values present in a wardrobe.
type Facets struct {
	Types  []string `json:"types"`
	Colors []string `json:"colors"`
}

// FacetsOf returns the sorted distinct types and colors of items.
func FacetsOf(items []model.ClothingItem) Facets {
	types := make(map[string]struct{})
	colors := make(map[string]struct{})
	for _, item := range items {
		if item.Type != "" {
			types[string(item.Type)] = struct{}{}
		}
		if item.Color != "" {
			colors[item.Color] = struct{}{}
		}
	}
	return Facets{Types: sortedKeys(types), Colors: sortedKeys(colors)}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
