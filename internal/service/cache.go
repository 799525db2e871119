package service

import (
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"

	"pdf-extract-service/internal/domain"
	"pdf-extract-service/internal/pdf"
	apperrors "pdf-extract-service/pkg/errors"
)

// DocumentCache keeps parsed document handles keyed by absolute path so
// repeated operations against the same file skip re-parsing. Handles
// are immutable after load and safe to share; at most one load runs per
// path at a time. Entries are validated against file size and mtime and
// evicted LRU beyond capacity.
type DocumentCache struct {
	capacity    int
	maxFileSize int64
	logger      domain.Logger

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // of *cacheItem, front = most recent
}

type cacheItem struct {
	path  string
	entry *cacheEntry
}

type cacheEntry struct {
	ready   chan struct{} // closed when doc/err are set
	doc     *pdf.Document
	err     error
	size    int64
	modTime time.Time
}

// NewDocumentCache creates a cache holding up to capacity handles. A
// capacity of zero disables caching; every Get loads fresh.
func NewDocumentCache(capacity int, maxFileSize int64, logger domain.Logger) *DocumentCache {
	return &DocumentCache{
		capacity:    capacity,
		maxFileSize: maxFileSize,
		logger:      logger,
		entries:     make(map[string]*list.Element),
		lru:         list.New(),
	}
}

// Get returns the parsed handle for path, loading it if the cache has
// no current entry. Concurrent calls for the same path share one load.
func (c *DocumentCache) Get(path string) (*pdf.Document, error) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return nil, apperrors.NewNotFound(path)
	}
	if c.maxFileSize > 0 && fi.Size() > c.maxFileSize {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("file exceeds maximum size of %d bytes", c.maxFileSize))
	}

	if c.capacity <= 0 {
		return pdf.Open(path)
	}

	c.mu.Lock()
	if elem, ok := c.entries[path]; ok {
		entry := elem.Value.(*cacheItem).entry
		if entry.size == fi.Size() && entry.modTime.Equal(fi.ModTime()) {
			c.lru.MoveToFront(elem)
			c.mu.Unlock()
			<-entry.ready
			return entry.doc, entry.err
		}
		// File changed on disk; drop the stale handle.
		c.removeLocked(elem)
	}

	entry := &cacheEntry{
		ready:   make(chan struct{}),
		size:    fi.Size(),
		modTime: fi.ModTime(),
	}
	elem := c.lru.PushFront(&cacheItem{path: path, entry: entry})
	c.entries[path] = elem
	for c.lru.Len() > c.capacity {
		c.removeLocked(c.lru.Back())
	}
	c.mu.Unlock()

	entry.doc, entry.err = pdf.Open(path)
	close(entry.ready)

	if entry.err != nil {
		// Failed loads are not worth keeping; the file may be fixed.
		c.mu.Lock()
		if cur, ok := c.entries[path]; ok && cur == elem {
			c.removeLocked(cur)
		}
		c.mu.Unlock()
	} else {
		c.logger.Debug("Cached document handle", "path", path, "size", fi.Size())
	}
	return entry.doc, entry.err
}

// Len reports the number of cached handles.
func (c *DocumentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *DocumentCache) removeLocked(elem *list.Element) {
	item := elem.Value.(*cacheItem)
	delete(c.entries, item.path)
	c.lru.Remove(elem)
}
