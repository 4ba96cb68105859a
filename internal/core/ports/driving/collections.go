package driving

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// CollectionAdmin exposes remote collection housekeeping.
type CollectionAdmin interface {
	// List returns all remote collections.
	List(ctx context.Context) ([]domain.Collection, error)

	// Delete removes the named collection remotely and purges its ledger
	// records. Returns domain.ErrNotFound if no such collection exists.
	Delete(ctx context.Context, name string) error

	// CheckAndParse finds the named collection's unparsed or failed
	// documents, starts parsing for exactly those, and monitors to
	// completion or deadline.
	CheckAndParse(ctx context.Context, name string) (*domain.CollectionReport, error)

	// CancelParse stops parsing for the named collection's running
	// documents and returns how many were cancelled.
	CancelParse(ctx context.Context, name string) (int, error)

	// LedgerStats summarises the local revision ledger.
	LedgerStats(ctx context.Context) (*domain.LedgerStats, error)

	// ExportRecords returns every live ledger record across all
	// collections, grouped by collection id.
	ExportRecords(ctx context.Context) ([]domain.RevisionRecord, error)
}
