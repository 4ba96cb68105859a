package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// RevisionLedger is the persistent record of what has already been synced,
// keyed by source identity. It is a pure data store: it never issues remote
// calls, leaving all ordering and retry decisions to the sync coordinator.
type RevisionLedger interface {
	// Lookup retrieves the live record for a source key.
	// Returns domain.ErrNotFound when no record exists.
	Lookup(ctx context.Context, sourceKey string) (*domain.RevisionRecord, error)

	// ShouldSkip reports whether a record exists with exactly the given
	// fingerprint. No fuzzy comparison.
	ShouldSkip(ctx context.Context, sourceKey, fingerprint string) (bool, error)

	// Replace writes the record for its source key, overwriting any prior
	// record. The write is atomic per key: it fully replaces or fails.
	// The caller must already have deleted the prior record's remote
	// documents before calling this.
	Replace(ctx context.Context, record domain.RevisionRecord) error

	// Delete removes the record for a source key.
	// Deleting an absent key is not an error.
	Delete(ctx context.Context, sourceKey string) error

	// List returns all records for a collection, most recent first.
	List(ctx context.Context, collectionID string) ([]domain.RevisionRecord, error)

	// DeleteByCollection removes every record for a collection.
	// Used when a collection is deleted remotely.
	DeleteByCollection(ctx context.Context, collectionID string) (int, error)

	// Stats summarises ledger contents.
	Stats(ctx context.Context) (*domain.LedgerStats, error)
}

// DownloadCache remembers fetched URLs so unexpired content is not
// downloaded twice.
type DownloadCache interface {
	// Get returns the cache entry for a URL.
	// Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, url string) (*domain.CacheEntry, error)

	// Put stores or refreshes an entry.
	Put(ctx context.Context, entry domain.CacheEntry) error

	// Sweep removes entries fetched before the cutoff and returns how
	// many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}
