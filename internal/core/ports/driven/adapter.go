package driven

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// SourceAdapter produces work items from a configured source.
// Each source type (spreadsheet, database, github) implements this interface.
// Adapters are interchangeable from the coordinator's point of view: the
// pipeline never branches on source type.
type SourceAdapter interface {
	// Type returns the adapter type identifier.
	Type() domain.SourceType

	// SourceID returns the configured source ID.
	SourceID() string

	// Validate checks the source can be opened before a run starts.
	// For a spreadsheet this stats the workbook, for a database it pings
	// the connection, for an API source it makes a test call.
	// A failure here means domain.ErrSourceUnavailable: the run aborts.
	Validate(ctx context.Context) error

	// Produce re-scans the source and streams its work items.
	// The item channel closes when the source is exhausted. A terminal
	// failure arrives on the error channel; per-item problems are the
	// adapter's to skip or report as items, never to abort the stream.
	// Each call starts a fresh scan; streams are not resumable.
	Produce(ctx context.Context) (<-chan domain.WorkItem, <-chan error)

	// Close releases resources.
	Close() error
}
