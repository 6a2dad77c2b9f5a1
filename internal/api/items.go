package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/omara/internal/bgremove"
	"github.com/erazemk/omara/internal/imaging"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/staging"
	"github.com/erazemk/omara/internal/wardrobe"
)

// ItemsHandler handles wardrobe item endpoints.
type ItemsHandler struct {
	Wardrobe   *wardrobe.Store
	Uploads    *staging.Area
	Classifier Classifier
	Remover    bgremove.Remover
}

type analyzeResponse struct {
	UploadID       string               `json:"upload_id"`
	Classification model.Classification `json:"classification"`
}

type listResponse struct {
	Items []model.ClothingItem `json:"items"`
	Count int                  `json:"count"`
	Total int                  `json:"total"`
}

// Analyze handles POST /api/items/analyze. The photo is staged and
// classified; the returned upload id is passed back when saving the item.
func (h *ItemsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read image")
		return
	}

	// The model gets a downscaled JPEG; the original is kept for saving.
	small, err := imaging.Process(bytes.NewReader(data), imaging.JPEG)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, ext, _ := imaging.Sniff(data)
	uploadID, err := h.Uploads.Stage(data, ext)
	if err != nil {
		slog.Error("staging upload failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	result, err := h.Classifier.Classify(r.Context(), small.Data, small.MIME)
	if err != nil {
		modelError(w, err, uploadID)
		return
	}

	jsonResponse(w, http.StatusOK, analyzeResponse{UploadID: uploadID, Classification: result})
}

// Create handles POST /api/items. The body is a clothing item, optionally
// with an upload_id from Analyze whose photo becomes the item's image.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil || body == nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var uploadID string
	if raw, ok := body["upload_id"]; ok {
		if err := json.Unmarshal(raw, &uploadID); err != nil {
			jsonError(w, http.StatusBadRequest, "upload_id must be a string")
			return
		}
		delete(body, "upload_id")
	}
	// Image paths are assigned by the store.
	delete(body, "image_path")

	var item model.ClothingItem
	data, _ := json.Marshal(body)
	if err := json.Unmarshal(data, &item); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.Type = model.ClothingType(strings.TrimSpace(string(item.Type)))
	item.Color = strings.TrimSpace(item.Color)
	item.Style = strings.TrimSpace(item.Style)
	if item.Type == "" || item.Color == "" || item.Style == "" {
		jsonError(w, http.StatusBadRequest, "type, color and style required")
		return
	}
	if item.ID != "" && !wardrobe.ValidID(item.ID) {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var stored model.ClothingItem
	var err error
	if uploadID == "" {
		stored, err = h.Wardrobe.Append(item)
	} else {
		stored, err = h.appendWithUpload(r, item, uploadID)
	}

	switch {
	case err == nil:
		jsonResponse(w, http.StatusCreated, stored)
	case errors.Is(err, staging.ErrNotFound):
		jsonError(w, http.StatusBadRequest, "unknown or expired upload_id")
	case errors.Is(err, wardrobe.ErrInvalidID):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wardrobe.ErrDuplicateID):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("saving item failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save item")
	}
}

// appendWithUpload removes the background from a staged photo and stores it
// as a PNG next to the item.
func (h *ItemsHandler) appendWithUpload(r *http.Request, item model.ClothingItem, uploadID string) (model.ClothingItem, error) {
	data, _, err := h.Uploads.Take(uploadID)
	if err != nil {
		return model.ClothingItem{}, err
	}

	cleaned := h.Remover.Remove(r.Context(), data)
	img, err := imaging.Process(bytes.NewReader(cleaned), imaging.PNG)
	if err != nil {
		slog.Warn("processed image unreadable, keeping original", "error", err)
		if img, err = imaging.Process(bytes.NewReader(data), imaging.PNG); err != nil {
			return model.ClothingItem{}, err
		}
	}

	return h.Wardrobe.AppendWithImage(item, img.Data, img.Ext)
}

// List handles GET /api/items. type and color may repeat or hold comma
// separated values; style matches as a substring.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	all := h.Wardrobe.Load()
	items := wardrobe.Filter{
		Types:  splitValues(q["type"]),
		Colors: splitValues(q["color"]),
		Style:  q.Get("style"),
	}.Apply(all)

	if items == nil {
		items = []model.ClothingItem{}
	}
	jsonResponse(w, http.StatusOK, listResponse{Items: items, Count: len(items), Total: len(all)})
}

// Facets handles GET /api/items/facets.
func (h *ItemsHandler) Facets(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, wardrobe.FacetsOf(h.Wardrobe.Load()))
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Wardrobe.Get(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}. Deleting an absent item succeeds.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Wardrobe.Delete(r.PathValue("id")); err != nil {
		slog.Error("deleting item failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Wardrobe.Get(r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	path, ok := h.Wardrobe.ImagePath(item)
	if !ok {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeFile(w, r, path)
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
