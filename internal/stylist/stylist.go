// Package stylist scores outfit combinations with a language model.
package stylist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/omara/internal/airesponse"
	"github.com/erazemk/omara/internal/llm"
	"github.com/erazemk/omara/internal/model"
)

// Outfit size limits.
const (
	MinOutfitItems = 2
	MaxOutfitItems = 3
)

// DefaultOccasion is used when a request names none.
const DefaultOccasion = "Casual"

// ErrOutfitSize is returned for outfits outside the size limits.
var ErrOutfitSize = errors.New("outfit must have 2 or 3 items")

// Request describes an outfit to assess.
type Request struct {
	Items    []model.ClothingItem
	Occasion string
	// Weather is a short description of current conditions, if known.
	Weather string
	// Criteria is free text from the user, for example "job interview".
	Criteria string
}

// Stylist asks a model to rate outfits.
type Stylist struct {
	gen llm.Generator
}

// New returns a stylist backed by gen.
func New(gen llm.Generator) *Stylist {
	return &Stylist{gen: gen}
}

// Feedback rates the outfit in req. Model failures are *airesponse.Error
// values.
func (s *Stylist) Feedback(ctx context.Context, req Request) (model.OutfitFeedback, error) {
	if n := len(req.Items); n < MinOutfitItems || n > MaxOutfitItems {
		return model.OutfitFeedback{}, fmt.Errorf("%w: got %d", ErrOutfitSize, n)
	}

	p, err := buildPrompt(req)
	if err != nil {
		return model.OutfitFeedback{}, err
	}

	raw, err := s.gen.Generate(ctx, p)
	if err != nil {
		slog.Error("feedback request failed", "error", err)
		return model.OutfitFeedback{}, airesponse.Upstream(airesponse.FeedbackContract.Name, err)
	}

	fb, err := airesponse.ParseFeedback(raw)
	if err != nil {
		slog.Warn("feedback response rejected", "error", err, "raw", raw)
		return model.OutfitFeedback{}, err
	}

	slog.Info("outfit rated", "items", len(req.Items), "rating", fb.Rating)
	return fb, nil
}

// promptItem is the part of an item the model gets to see.
type promptItem struct {
	ID    string             `json:"id"`
	Type  model.ClothingType `json:"type"`
	Color string             `json:"color"`
	Style string             `json:"style"`
}

func buildPrompt(req Request) (string, error) {
	items := make([]promptItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, promptItem{ID: item.ID, Type: item.Type, Color: item.Color, Style: item.Style})
	}
	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding outfit items: %w", err)
	}

	occasion := strings.TrimSpace(req.Occasion)
	if occasion == "" {
		occasion = DefaultOccasion
	}

	var b strings.Builder
	b.WriteString("You are a friendly and supportive personal fashion stylist.\n")
	b.WriteString("Assess how well the following clothing items work together as one outfit:\n")
	b.Write(itemsJSON)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Occasion: %s.\n", occasion)
	if w := strings.TrimSpace(req.Weather); w != "" {
		fmt.Fprintf(&b, "Current weather: %s. Take it into account.\n", w)
	}
	if c := strings.TrimSpace(req.Criteria); c != "" {
		fmt.Fprintf(&b, "The wearer also asks: %s\n", c)
	}
	b.WriteString("Respond ONLY with a valid JSON object, with no text outside it:\n")
	b.WriteString(`{"rating": <integer 1-10>, "feedback": "<one short comment>", "suggestion": "<one sentence suggesting an improvement or accessory>"}`)
	return b.String(), nil
}
