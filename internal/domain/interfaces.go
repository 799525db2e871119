package domain

import "context"

// Extractor defines the document extraction operations served by the
// dispatch layers (HTTP and MCP).
type Extractor interface {
	// ExtractDocument decodes every page of the document, skipping pages
	// that fail to decode and noting them in the result.
	ExtractDocument(ctx context.Context, path string) (*DocumentText, error)

	// ExtractPage decodes a single page (1-indexed). Unlike the
	// multi-page operations, a page-level decode failure is surfaced
	// directly to the caller.
	ExtractPage(ctx context.Context, path string, page int) (string, error)

	// ExtractRange decodes pages start..end inclusive (1-indexed), with
	// the same skip-and-note policy as ExtractDocument.
	ExtractRange(ctx context.Context, path string, start, end int) (*RangeText, error)

	// Info returns document metadata and the page count. It succeeds
	// even for encrypted documents.
	Info(ctx context.Context, path string) (*DocumentInfo, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetMaxFileSize() int64
	GetCacheCapacity() int
	GetExtractConcurrency() int
	GetAllowedOrigins() []string
}
