package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/omara/internal/airesponse"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// modelErrorResponse describes a failed model call. Kind is one of
// upstream_failure, malformed_document or schema_mismatch.
type modelErrorResponse struct {
	Error    string   `json:"error"`
	Kind     string   `json:"kind"`
	Raw      string   `json:"raw,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	UploadID string   `json:"upload_id,omitempty"`
}

// modelError writes a 502 for errors from the model collaborators. Errors
// that are not model failures become a 500.
func modelError(w http.ResponseWriter, err error, uploadID string) {
	kind := airesponse.KindName(err)
	if kind == "" {
		slog.Error("unexpected model error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := modelErrorResponse{
		Error:    err.Error(),
		Kind:     kind,
		Raw:      airesponse.RawText(err),
		UploadID: uploadID,
	}
	var rerr *airesponse.Error
	if errors.As(err, &rerr) {
		resp.Fields = rerr.Fields
	}
	jsonResponse(w, http.StatusBadGateway, resp)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
