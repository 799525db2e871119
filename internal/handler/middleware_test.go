package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {
	logger := NewMockHandlerLogger()
	wrapped := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("POST", "/api/v1/extract", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if len(logger.messages) != 1 || !strings.HasPrefix(logger.messages[0], "INFO: Request handled") {
		t.Fatalf("expected one request log line, got %v", logger.messages)
	}
}

func TestRequestLoggerDefaultsToOK(t *testing.T) {
	logger := NewMockHandlerLogger()
	wrapped := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handler writes a body without an explicit status.
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
