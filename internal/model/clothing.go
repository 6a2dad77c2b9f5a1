package model

import (
	"encoding/json"
	"fmt"
)

// ClothingType is the garment category produced by the classifier.
type ClothingType string

// Clothing types. The store does not enforce these; they are what the
// classifier is asked to produce.
const (
	TypeTop       ClothingType = "Top"
	TypeBottom    ClothingType = "Bottom"
	TypeOuterwear ClothingType = "Outerwear"
	TypeDress     ClothingType = "Dress"
	TypeShoes     ClothingType = "Shoes"
	TypeAccessory ClothingType = "Accessory"
)

// ClothingTypes lists the known types in display order.
var ClothingTypes = []ClothingType{
	TypeTop, TypeBottom, TypeOuterwear, TypeDress, TypeShoes, TypeAccessory,
}

// Known reports whether t is one of the known clothing types.
func (t ClothingType) Known() bool {
	for _, k := range ClothingTypes {
		if t == k {
			return true
		}
	}
	return false
}

// ClothingItem is one persisted wardrobe record.
//
// Fields the application does not know about are kept in Extra and written
// back unchanged.
type ClothingItem struct {
	ID        string
	Type      ClothingType
	Color     string
	Style     string
	ImagePath string
	Extra     map[string]json.RawMessage
}

// Keys owned by ClothingItem. Everything else lands in Extra.
const (
	keyID        = "id"
	keyType      = "type"
	keyColor     = "color"
	keyStyle     = "style"
	keyImagePath = "image_path"
)

// MarshalJSON writes the known fields followed by the extra fields.
func (c ClothingItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		out[k] = v
	}
	out[keyID] = c.ID
	out[keyType] = c.Type
	out[keyColor] = c.Color
	out[keyStyle] = c.Style
	if c.ImagePath != "" {
		out[keyImagePath] = c.ImagePath
	} else {
		delete(out, keyImagePath)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps the rest in Extra.
func (c *ClothingItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("clothing item: expected object")
	}

	var item ClothingItem
	fields := []struct {
		key string
		dst *string
	}{
		{keyID, &item.ID},
		{keyColor, &item.Color},
		{keyStyle, &item.Style},
		{keyImagePath, &item.ImagePath},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := decodeOptionalString(v, f.dst); err != nil {
			return fmt.Errorf("clothing item field %q: %w", f.key, err)
		}
		delete(raw, f.key)
	}
	if v, ok := raw[keyType]; ok {
		var s string
		if err := decodeOptionalString(v, &s); err != nil {
			return fmt.Errorf("clothing item field %q: %w", keyType, err)
		}
		item.Type = ClothingType(s)
		delete(raw, keyType)
	}

	if len(raw) > 0 {
		item.Extra = raw
	}
	*c = item
	return nil
}

// decodeOptionalString decodes a JSON string, treating null as empty.
func decodeOptionalString(data json.RawMessage, dst *string) error {
	if string(data) == "null" {
		*dst = ""
		return nil
	}
	return json.Unmarshal(data, dst)
}

// Classification is the validated output of the clothing classifier.
type Classification struct {
	Type  ClothingType `json:"type"`
	Color string       `json:"color"`
	Style string       `json:"style"`
}

// Item returns a new, not yet stored, clothing item for the classification.
func (c Classification) Item() ClothingItem {
	return ClothingItem{Type: c.Type, Color: c.Color, Style: c.Style}
}
