package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies application errors so callers can react without
// string matching.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidFormat    Kind = "invalid_format"
	KindParseFailed      Kind = "parse_failed"
	KindEncrypted        Kind = "encrypted"
	KindPageNotFound     Kind = "page_not_found"
	KindInvalidRange     Kind = "invalid_range"
	KindPageDecodeFailed Kind = "page_decode_failed"
	KindValidation       Kind = "validation"
	KindInternal         Kind = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Cause      error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewNotFound reports a file path that does not resolve to a readable file.
func NewNotFound(path string) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("file not found: %s", path),
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidFormat reports a file that is not structurally a PDF.
func NewInvalidFormat(detail string) *AppError {
	return &AppError{
		Kind:       KindInvalidFormat,
		Message:    fmt.Sprintf("invalid PDF format: %s", detail),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewParseFailed reports structural corruption beyond font or encoding
// issues. Document-fatal: nothing can be aggregated.
func NewParseFailed(detail string, cause error) *AppError {
	return &AppError{
		Kind:       KindParseFailed,
		Message:    fmt.Sprintf("PDF parsing failed: %s", detail),
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewEncrypted reports a document whose content cannot be decoded without
// credentials. Metadata queries still succeed.
func NewEncrypted() *AppError {
	return &AppError{
		Kind:       KindEncrypted,
		Message:    "document is encrypted and requires a password",
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewPageNotFound reports a page index outside [1, total].
func NewPageNotFound(page, total int) *AppError {
	return &AppError{
		Kind:       KindPageNotFound,
		Message:    fmt.Sprintf("page %d does not exist (document has %d pages)", page, total),
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidRange reports a page range with start > end or a bound
// outside [1, total].
func NewInvalidRange(start, end, total int) *AppError {
	return &AppError{
		Kind:       KindInvalidRange,
		Message:    fmt.Sprintf("invalid page range %d-%d (document has %d pages)", start, end, total),
		StatusCode: http.StatusBadRequest,
	}
}

// NewPageDecodeFailed reports a failure isolated to one page.
func NewPageDecodeFailed(page int, cause error) *AppError {
	return &AppError{
		Kind:       KindPageDecodeFailed,
		Message:    fmt.Sprintf("failed to extract text from page %d", page),
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewValidation reports a malformed request from the caller.
func NewValidation(message string) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInternal creates a new internal server error
func NewInternal(message string, cause error) *AppError {
	return &AppError{
		Kind:       KindInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind checks if the error is of a specific kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
