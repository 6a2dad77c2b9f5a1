package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/stylist"
	"github.com/erazemk/omara/internal/wardrobe"
)

// OutfitsHandler handles outfit feedback.
type OutfitsHandler struct {
	Wardrobe *wardrobe.Store
	Stylist  Stylist
	Weather  WeatherDescriber
}

type feedbackRequest struct {
	ItemIDs  []string `json:"item_ids"`
	Place    string   `json:"place"`
	Criteria string   `json:"criteria"`
	Occasion string   `json:"occasion"`
}

type feedbackResponse struct {
	model.OutfitFeedback
	Weather string               `json:"weather,omitempty"`
	Items   []model.ClothingItem `json:"items"`
}

// Feedback handles POST /api/outfits/feedback.
func (h *OutfitsHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if n := len(req.ItemIDs); n < stylist.MinOutfitItems || n > stylist.MaxOutfitItems {
		jsonError(w, http.StatusBadRequest, stylist.ErrOutfitSize.Error())
		return
	}

	byID := make(map[string]model.ClothingItem)
	for _, item := range h.Wardrobe.Load() {
		if _, seen := byID[item.ID]; !seen {
			byID[item.ID] = item
		}
	}

	items := make([]model.ClothingItem, 0, len(req.ItemIDs))
	picked := make(map[string]bool, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if picked[id] {
			jsonError(w, http.StatusBadRequest, "duplicate item: "+id)
			return
		}
		item, ok := byID[id]
		if !ok {
			jsonError(w, http.StatusNotFound, "item not found: "+id)
			return
		}
		picked[id] = true
		items = append(items, item)
	}

	var conditions string
	if place := strings.TrimSpace(req.Place); place != "" && h.Weather != nil {
		conditions = h.Weather.Describe(r.Context(), place)
	}

	fb, err := h.Stylist.Feedback(r.Context(), stylist.Request{
		Items:    items,
		Occasion: req.Occasion,
		Weather:  conditions,
		Criteria: req.Criteria,
	})
	if errors.Is(err, stylist.ErrOutfitSize) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		modelError(w, err, "")
		return
	}

	jsonResponse(w, http.StatusOK, feedbackResponse{OutfitFeedback: fb, Weather: conditions, Items: items})
}
