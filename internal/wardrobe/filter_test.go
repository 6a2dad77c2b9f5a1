package wardrobe

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/omara/internal/model"
)

var filterItems = []model.ClothingItem{
	{ID: "CLO001", Type: model.TypeTop, Color: "Blue", Style: "Cotton Shirt"},
	{ID: "CLO002", Type: model.TypeBottom, Color: "Black", Style: "Jeans Slim Fit"},
	{ID: "CLO003", Type: model.TypeTop, Color: "White", Style: "Plain shirt"},
	{ID: "CLO004", Type: model.TypeShoes, Color: "White", Style: "Sneakers"},
}

func ids(items []model.ClothingItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty matches all", Filter{}, []string{"CLO001", "CLO002", "CLO003", "CLO004"}},
		{"by type", Filter{Types: []string{"Top"}}, []string{"CLO001", "CLO003"}},
		{"by several types", Filter{Types: []string{"Bottom", "Shoes"}}, []string{"CLO002", "CLO004"}},
		{"by color", Filter{Colors: []string{"White"}}, []string{"CLO003", "CLO004"}},
		{"style is case-insensitive substring", Filter{Style: "SHIRT"}, []string{"CLO001", "CLO003"}},
		{"combined", Filter{Types: []string{"Top"}, Colors: []string{"White"}, Style: "shirt"}, []string{"CLO003"}},
		{"no match", Filter{Colors: []string{"Pink"}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(filterItems))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFacetsOf(t *testing.T) {
	got := FacetsOf(filterItems)
	want := Facets{
		Types:  []string{"Bottom", "Shoes", "Top"},
		Colors: []string{"Black", "Blue", "White"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FacetsOf mismatch (-want +got):\n%s", diff)
	}

	empty := FacetsOf(nil)
	if len(empty.Types) != 0 || len(empty.Colors) != 0 {
		t.Errorf("expected empty facets, got %+v", empty)
	}
}
