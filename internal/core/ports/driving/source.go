package driving

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// SourceService manages source configurations.
type SourceService interface {
	// Add creates a new source configuration.
	Add(ctx context.Context, source domain.Source) error

	// Get retrieves a source by ID or name.
	Get(ctx context.Context, idOrName string) (*domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Update modifies an existing source configuration.
	Update(ctx context.Context, source domain.Source) error

	// Remove deletes a source configuration. Ledger records and remote
	// documents are untouched; use collection deletion for those.
	Remove(ctx context.Context, idOrName string) error

	// SetEnabled toggles a source's participation in sync runs.
	SetEnabled(ctx context.Context, idOrName string, enabled bool) error

	// ValidateConfig validates source settings for a source type.
	// Returns an error naming the missing or invalid field.
	ValidateConfig(ctx context.Context, sourceType domain.SourceType, settings map[string]string) error
}
