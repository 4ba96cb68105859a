package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// Ensure DownloadCache implements the interface.
var _ driven.DownloadCache = (*DownloadCache)(nil)

// DownloadCache is an in-memory implementation of driven.DownloadCache.
type DownloadCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// NewDownloadCache creates a new in-memory download cache.
func NewDownloadCache() *DownloadCache {
	return &DownloadCache{
		entries: make(map[string]domain.CacheEntry),
	}
}

// Get returns the cache entry for a URL.
func (s *DownloadCache) Get(_ context.Context, url string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// Put stores or refreshes an entry.
func (s *DownloadCache) Put(_ context.Context, entry domain.CacheEntry) error {
	if entry.URL == "" {
		return domain.ErrInvalidInput
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.URL] = entry
	return nil
}

// Sweep removes entries fetched before the cutoff.
func (s *DownloadCache) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for url, entry := range s.entries {
		if entry.FetchedAt.Before(cutoff) {
			delete(s.entries, url)
			count++
		}
	}
	return count, nil
}
