package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"pdf-extract-service/internal/domain"
	"pdf-extract-service/internal/pdf"
	apperrors "pdf-extract-service/pkg/errors"
)

// ExtractionService implements the document extraction operations:
// whole document, single page, page range, and info. Multi-page
// operations decode pages concurrently and isolate per-page failures;
// only document-structural errors abort a call.
type ExtractionService struct {
	cache       *DocumentCache
	logger      domain.Logger
	concurrency int
}

// NewExtractionService creates a new extraction service instance
func NewExtractionService(cache *DocumentCache, logger domain.Logger, concurrency int) *ExtractionService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ExtractionService{
		cache:       cache,
		logger:      logger,
		concurrency: concurrency,
	}
}

// ExtractDocument decodes every page, skipping pages that fail and
// noting them, rather than aborting the whole call.
func (s *ExtractionService) ExtractDocument(ctx context.Context, path string) (*domain.DocumentText, error) {
	doc, err := s.cache.Get(path)
	if err != nil {
		return nil, err
	}
	if doc.Encrypted() {
		return nil, apperrors.NewEncrypted()
	}
	count, err := doc.PageCount()
	if err != nil {
		return nil, err
	}

	results, err := s.decodePages(ctx, doc, 1, count)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	failed := make([]int, 0)
	for i, res := range results {
		page := i + 1
		if res.err != nil {
			s.logger.Warn("Skipping page that failed to decode", "path", path, "page", page, "error", res.err)
			failed = append(failed, page)
			continue
		}
		if text.Len() > 0 && res.text != "" {
			text.WriteString("\n")
		}
		text.WriteString(res.text)
	}
	if len(failed) > 0 {
		text.WriteString(fmt.Sprintf(
			"\n\n[Note: %d page(s) could not be extracted due to font encoding issues: %s]",
			len(failed), formatPageList(failed)))
	}

	s.logger.Info("Extracted document", "path", path, "pages", count, "failed_pages", len(failed))
	return &domain.DocumentText{Text: text.String(), FailedPages: failed}, nil
}

// ExtractPage decodes one page. A decode failure is surfaced directly
// instead of being skipped.
func (s *ExtractionService) ExtractPage(ctx context.Context, path string, page int) (string, error) {
	doc, err := s.cache.Get(path)
	if err != nil {
		return "", err
	}
	if doc.Encrypted() {
		return "", apperrors.NewEncrypted()
	}
	p, err := doc.ResolvePage(page)
	if err != nil {
		return "", err
	}
	text, err := doc.ExtractPageText(p)
	if err != nil {
		return "", apperrors.NewPageDecodeFailed(page, err)
	}
	return text, nil
}

// ExtractRange decodes pages start..end inclusive with the same
// skip-and-note policy as ExtractDocument. The range must satisfy
// 1 <= start <= end <= page count.
func (s *ExtractionService) ExtractRange(ctx context.Context, path string, start, end int) (*domain.RangeText, error) {
	doc, err := s.cache.Get(path)
	if err != nil {
		return nil, err
	}
	if doc.Encrypted() {
		return nil, apperrors.NewEncrypted()
	}
	count, err := doc.PageCount()
	if err != nil {
		return nil, err
	}
	if start < 1 || start > end || end > count {
		return nil, apperrors.NewInvalidRange(start, end, count)
	}

	results, err := s.decodePages(ctx, doc, start, end)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.PageText, 0, len(results))
	failed := make([]int, 0)
	for i, res := range results {
		page := start + i
		if res.err != nil {
			s.logger.Warn("Skipping page that failed to decode", "path", path, "page", page, "error", res.err)
			failed = append(failed, page)
			continue
		}
		pages = append(pages, domain.PageText{Page: page, Text: res.text})
	}

	return &domain.RangeText{Pages: pages, FailedPages: failed}, nil
}

// Info returns document metadata and the page count. It succeeds for
// encrypted documents; only content decoding requires credentials.
func (s *ExtractionService) Info(ctx context.Context, path string) (*domain.DocumentInfo, error) {
	doc, err := s.cache.Get(path)
	if err != nil {
		return nil, err
	}
	count, err := doc.PageCount()
	if err != nil {
		return nil, err
	}
	meta := doc.Metadata()
	return &domain.DocumentInfo{
		PageCount: count,
		Encrypted: doc.Encrypted(),
		Title:     meta.Title,
		Author:    meta.Author,
		Subject:   meta.Subject,
		Creator:   meta.Creator,
	}, nil
}

type pageResult struct {
	text string
	err  error
}

// decodePages decodes pages start..end concurrently. Each page's
// decode is independent; results come back indexed so aggregation
// restores ascending page order. Page-level failures land in the
// result slice, never in the returned error.
func (s *ExtractionService) decodePages(ctx context.Context, doc *pdf.Document, start, end int) ([]pageResult, error) {
	results := make([]pageResult, end-start+1)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for n := start; n <= end; n++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := doc.ResolvePage(n)
			if err != nil {
				results[n-start] = pageResult{err: err}
				return nil
			}
			text, err := doc.ExtractPageText(p)
			results[n-start] = pageResult{text: text, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternal("page decoding interrupted", err)
	}
	return results, nil
}

func formatPageList(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
