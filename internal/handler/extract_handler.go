// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"pdf-extract-service/internal/domain"
	apperrors "pdf-extract-service/pkg/errors"
)

// ExtractHandler handles document extraction HTTP requests
type ExtractHandler struct {
	extractor domain.Extractor
	logger    domain.Logger
}

// NewExtractHandler creates a new extraction handler
func NewExtractHandler(extractor domain.Extractor, logger domain.Logger) *ExtractHandler {
	return &ExtractHandler{
		extractor: extractor,
		logger:    logger,
	}
}

type extractRequest struct {
	FilePath string `json:"file_path"`
}

type extractPageRequest struct {
	FilePath string `json:"file_path"`
	Page     int    `json:"page"`
}

type extractRangeRequest struct {
	FilePath  string `json:"file_path"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

type pageTextResponse struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// ExtractDocument handles whole-document text extraction
func (h *ExtractHandler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validatePath(req.FilePath); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.extractor.ExtractDocument(r.Context(), req.FilePath)
	if err != nil {
		h.logger.Error("Whole-document extraction failed", err, "path", req.FilePath)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExtractPage handles single-page text extraction
func (h *ExtractHandler) ExtractPage(w http.ResponseWriter, r *http.Request) {
	var req extractPageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validatePath(req.FilePath); err != nil {
		writeError(w, err)
		return
	}
	if req.Page < 1 {
		writeError(w, apperrors.NewValidation("page must be 1 or greater"))
		return
	}

	text, err := h.extractor.ExtractPage(r.Context(), req.FilePath, req.Page)
	if err != nil {
		h.logger.Error("Single-page extraction failed", err, "path", req.FilePath, "page", req.Page)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageTextResponse{Page: req.Page, Text: text})
}

// ExtractRange handles page-range text extraction
func (h *ExtractHandler) ExtractRange(w http.ResponseWriter, r *http.Request) {
	var req extractRangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validatePath(req.FilePath); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.extractor.ExtractRange(r.Context(), req.FilePath, req.StartPage, req.EndPage)
	if err != nil {
		h.logger.Error("Page-range extraction failed", err, "path", req.FilePath, "start", req.StartPage, "end", req.EndPage)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Info handles document metadata requests
func (h *ExtractHandler) Info(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validatePath(req.FilePath); err != nil {
		writeError(w, err)
		return
	}

	info, err := h.extractor.Info(r.Context(), req.FilePath)
	if err != nil {
		h.logger.Error("Info query failed", err, "path", req.FilePath)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperrors.NewValidation("request body is not valid JSON"))
		return false
	}
	return true
}

// validatePath enforces the caller-side contract: only absolute paths
// reach the extraction engine.
func validatePath(path string) error {
	if path == "" {
		return apperrors.NewValidation("file_path is required")
	}
	if !filepath.IsAbs(path) {
		return apperrors.NewValidation("file_path must be an absolute path")
	}
	return nil
}
