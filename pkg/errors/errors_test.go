package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorKindsAndStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		kind   Kind
		status int
	}{
		{NewNotFound("/x.pdf"), KindNotFound, http.StatusNotFound},
		{NewInvalidFormat("no header"), KindInvalidFormat, http.StatusUnprocessableEntity},
		{NewParseFailed("bad xref", nil), KindParseFailed, http.StatusUnprocessableEntity},
		{NewEncrypted(), KindEncrypted, http.StatusUnprocessableEntity},
		{NewPageNotFound(7, 3), KindPageNotFound, http.StatusNotFound},
		{NewInvalidRange(3, 2, 10), KindInvalidRange, http.StatusBadRequest},
		{NewPageDecodeFailed(2, errors.New("bad font")), KindPageDecodeFailed, http.StatusUnprocessableEntity},
		{NewValidation("bad input"), KindValidation, http.StatusBadRequest},
		{NewInternal("boom", nil), KindInternal, http.StatusInternalServerError},
	}

	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Fatalf("expected kind %s, got %s", c.kind, c.err.Kind)
		}
		if GetStatusCode(c.err) != c.status {
			t.Fatalf("%s: expected status %d, got %d", c.kind, c.status, GetStatusCode(c.err))
		}
		if !IsKind(c.err, c.kind) {
			t.Fatalf("IsKind(%s) returned false", c.kind)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	err := NewPageNotFound(7, 3)
	if !strings.Contains(err.Error(), "page 7 does not exist (document has 3 pages)") {
		t.Fatalf("unexpected message: %s", err.Error())
	}

	err = NewInvalidRange(3, 2, 10)
	if !strings.Contains(err.Error(), "invalid page range 3-2 (document has 10 pages)") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewParseFailed("reading xref", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Fatalf("expected cause in message, got %s", err.Error())
	}
}

func TestKindOfWrappedError(t *testing.T) {
	inner := NewEncrypted()
	wrapped := fmt.Errorf("handling request: %w", inner)

	if KindOf(wrapped) != KindEncrypted {
		t.Fatalf("expected kind %s through wrapping, got %s", KindEncrypted, KindOf(wrapped))
	}
	if GetStatusCode(wrapped) != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d through wrapping, got %d", http.StatusUnprocessableEntity, GetStatusCode(wrapped))
	}
}

func TestForeignErrorDefaults(t *testing.T) {
	err := errors.New("plain error")
	if KindOf(err) != KindInternal {
		t.Fatalf("expected internal kind for foreign errors, got %s", KindOf(err))
	}
	if GetStatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500 for foreign errors, got %d", GetStatusCode(err))
	}
}
