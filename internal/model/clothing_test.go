package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClothingItemKeepsExtraFields(t *testing.T) {
	in := `{"id":"CLO001","type":"Top","color":"Blue","style":"Shirt","brand":"Acme","tags":["work",1],"worn":{"count":3}}`

	var item ClothingItem
	if err := json.Unmarshal([]byte(in), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if item.ID != "CLO001" || item.Type != TypeTop || item.Color != "Blue" || item.Style != "Shirt" {
		t.Errorf("unexpected known fields: %+v", item)
	}
	if len(item.Extra) != 3 {
		t.Fatalf("expected 3 extra fields, got %d", len(item.Extra))
	}

	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var want, got map[string]any
	json.Unmarshal([]byte(in), &want)
	json.Unmarshal(out, &got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClothingItemOmitsEmptyImagePath(t *testing.T) {
	out, err := json.Marshal(ClothingItem{ID: "CLO002", Type: TypeShoes})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	json.Unmarshal(out, &got)
	if _, ok := got["image_path"]; ok {
		t.Errorf("expected no image_path key, got %s", out)
	}
}

func TestClothingItemUnknownTypePassesThrough(t *testing.T) {
	var item ClothingItem
	if err := json.Unmarshal([]byte(`{"id":"CLO003","type":"Cape"}`), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if item.Type != "Cape" {
		t.Errorf("expected type Cape, got %q", item.Type)
	}
	if item.Type.Known() {
		t.Error("Cape should not be a known type")
	}
	if !TypeOuterwear.Known() {
		t.Error("Outerwear should be a known type")
	}
}

func TestClothingItemRejectsNonObject(t *testing.T) {
	var item ClothingItem
	if err := json.Unmarshal([]byte(`"CLO001"`), &item); err == nil {
		t.Error("expected error for string document")
	}
	if err := json.Unmarshal([]byte(`{"id": 7}`), &item); err == nil {
		t.Error("expected error for numeric id")
	}
}
