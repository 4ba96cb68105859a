package driven

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// AdapterBuilder creates a SourceAdapter from a source configuration.
type AdapterBuilder func(source domain.Source) (SourceAdapter, error)

// AdapterFactory creates source adapters from source configuration.
// It maintains a registry of source types and their builders.
type AdapterFactory interface {
	// Create returns a SourceAdapter for the given source.
	// Returns domain.ErrUnsupportedType if the source type is unknown.
	Create(ctx context.Context, source domain.Source) (SourceAdapter, error)

	// Register adds an adapter builder for the given type.
	Register(sourceType domain.SourceType, builder AdapterBuilder)

	// SupportedTypes returns all registered source types.
	SupportedTypes() []domain.SourceType
}
