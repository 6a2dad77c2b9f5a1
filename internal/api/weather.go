package api

import (
	"net/http"
	"strings"
)

// WeatherHandler reports current conditions.
type WeatherHandler struct {
	Weather WeatherDescriber
}

// Get handles GET /api/weather?place=.
func (h *WeatherHandler) Get(w http.ResponseWriter, r *http.Request) {
	place := strings.TrimSpace(r.URL.Query().Get("place"))
	if place == "" {
		jsonError(w, http.StatusBadRequest, "place required")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"place":   place,
		"weather": h.Weather.Describe(r.Context(), place),
	})
}
