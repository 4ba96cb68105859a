package driving

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// SyncOrchestrator coordinates ingestion runs from sources into remote
// collections.
type SyncOrchestrator interface {
	// Sync runs the pipeline for a single source, identified by name or ID.
	// Per-item failures land in the report; only fatal failures (source
	// unavailable, collection creation failure) return an error.
	Sync(ctx context.Context, source string) (*domain.RunReport, error)

	// SyncAll runs the pipeline for every enabled source.
	SyncAll(ctx context.Context) (*domain.RunReport, error)

	// Status returns the live progress of the current run.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync run.
type SyncStatus struct {
	// Running indicates a run is currently in progress.
	Running bool

	// Source is the source currently being processed.
	Source string

	// Collection is the remote collection currently being filled.
	Collection string

	// Phase describes the current pipeline activity.
	Phase string

	// ItemsSeen counts work items consumed so far.
	ItemsSeen int

	// Skipped counts unchanged items.
	Skipped int

	// Uploaded counts fully uploaded items.
	Uploaded int

	// Failed counts failed items.
	Failed int

	// Monitoring indicates the parse monitor is polling.
	Monitoring bool

	// ParseStates is the latest observed run-state distribution.
	ParseStates domain.RunStateCounts
}
