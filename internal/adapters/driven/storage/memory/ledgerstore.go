package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// Ensure RevisionLedger implements the interface.
var _ driven.RevisionLedger = (*RevisionLedger)(nil)

// RevisionLedger is an in-memory implementation of driven.RevisionLedger.
type RevisionLedger struct {
	mu      sync.RWMutex
	records map[string]domain.RevisionRecord
}

// NewRevisionLedger creates a new in-memory revision ledger.
func NewRevisionLedger() *RevisionLedger {
	return &RevisionLedger{
		records: make(map[string]domain.RevisionRecord),
	}
}

// Lookup retrieves the live record for a source key.
func (s *RevisionLedger) Lookup(_ context.Context, sourceKey string) (*domain.RevisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sourceKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := record.Clone()
	return &out, nil
}

// ShouldSkip reports whether a record exists with exactly the given fingerprint.
func (s *RevisionLedger) ShouldSkip(_ context.Context, sourceKey, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sourceKey]
	return ok && record.Fingerprint == fingerprint, nil
}

// Replace writes the record for its source key, overwriting any prior record.
func (s *RevisionLedger) Replace(_ context.Context, record domain.RevisionRecord) error {
	if record.SourceKey == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SourceKey] = record.Clone()
	return nil
}

// Delete removes the record for a source key.
func (s *RevisionLedger) Delete(_ context.Context, sourceKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sourceKey)
	return nil
}

// List returns all records for a collection, most recent first.
func (s *RevisionLedger) List(_ context.Context, collectionID string) ([]domain.RevisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.RevisionRecord
	for _, record := range s.records {
		if record.CollectionID == collectionID {
			result = append(result, record.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastSyncedAt.After(result[j].LastSyncedAt)
	})
	return result, nil
}

// DeleteByCollection removes every record for a collection.
func (s *RevisionLedger) DeleteByCollection(_ context.Context, collectionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key, record := range s.records {
		if record.CollectionID == collectionID {
			delete(s.records, key)
			count++
		}
	}
	return count, nil
}

// Stats summarises ledger contents.
func (s *RevisionLedger) Stats(_ context.Context) (*domain.LedgerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.LedgerStats{ByCollection: make(map[string]int)}
	for _, record := range s.records {
		stats.Records++
		stats.Documents += len(record.DocumentIDs)
		stats.ByCollection[record.CollectionID]++
		if record.LastSyncedAt.After(stats.LastSyncedAt) {
			stats.LastSyncedAt = record.LastSyncedAt
		}
	}
	return stats, nil
}
