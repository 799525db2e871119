package handler

import (
	"encoding/json"
	"net/http"

	apperrors "pdf-extract-service/pkg/errors"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorResponse is the JSON envelope for failed requests.
type errorResponse struct {
	Error string         `json:"error"`
	Kind  apperrors.Kind `json:"kind"`
}

// writeError maps an application error onto its HTTP status and a
// structured JSON body.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.GetStatusCode(err), errorResponse{
		Error: err.Error(),
		Kind:  apperrors.KindOf(err),
	})
}
