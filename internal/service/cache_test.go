package service

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "pdf-extract-service/pkg/errors"
)

func TestDocumentCache_ReusesHandle(t *testing.T) {
	cache := NewDocumentCache(4, 0, NewMockLogger())
	path := writeTestPDF(t, threePageDoc())

	first, err := cache.Get(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Get(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the same handle for an unchanged file")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 cached handle, got %d", cache.Len())
	}
}

func TestDocumentCache_ReloadsChangedFile(t *testing.T) {
	cache := NewDocumentCache(4, 0, NewMockLogger())
	path := writeTestPDF(t, threePageDoc())

	first, err := cache.Get(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rewrite the file with different content and a different mtime.
	newData := buildTestPDF([]testPage{{text: "replaced"}}, "", false)
	if err := os.WriteFile(path, newData, 0o644); err != nil {
		t.Fatalf("rewriting file: %v", err)
	}
	if err := os.Chtimes(path, time.Now(), time.Now().Add(2*time.Second)); err != nil {
		t.Fatalf("touching file: %v", err)
	}

	second, err := cache.Get(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh handle after the file changed")
	}
	count, err := second.PageCount()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the reloaded document, got %d pages", count)
	}
}

func TestDocumentCache_EvictsOverCapacity(t *testing.T) {
	cache := NewDocumentCache(2, 0, NewMockLogger())
	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc%d.pdf", i))
		if err := os.WriteFile(path, threePageDoc(), 0o644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
		if _, err := cache.Get(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cached handles, got %d", cache.Len())
	}
}

func TestDocumentCache_ZeroCapacityDisablesCaching(t *testing.T) {
	cache := NewDocumentCache(0, 0, NewMockLogger())
	path := writeTestPDF(t, threePageDoc())

	first, err := cache.Get(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Get(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected fresh loads when caching is disabled")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestDocumentCache_MaxFileSize(t *testing.T) {
	cache := NewDocumentCache(4, 64, NewMockLogger())
	path := writeTestPDF(t, threePageDoc())

	_, err := cache.Get(path)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error for oversized file, got %v", err)
	}
}

func TestDocumentCache_MissingFile(t *testing.T) {
	cache := NewDocumentCache(4, 0, NewMockLogger())

	_, err := cache.Get("/no/such/file.pdf")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	// A directory is not a readable document either.
	_, err = cache.Get(t.TempDir())
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found error for directory, got %v", err)
	}
}

func TestDocumentCache_FailedLoadNotCached(t *testing.T) {
	cache := NewDocumentCache(4, 0, NewMockLogger())
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	_, err := cache.Get(path)
	if !apperrors.IsKind(err, apperrors.KindInvalidFormat) {
		t.Fatalf("expected invalid format error, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected failed load to be dropped, got %d entries", cache.Len())
	}
}
