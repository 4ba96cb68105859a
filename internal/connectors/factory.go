package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ingesta-cli/internal/connectors/database"
	"github.com/custodia-labs/ingesta-cli/internal/connectors/github"
	"github.com/custodia-labs/ingesta-cli/internal/connectors/spreadsheet"
	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.AdapterFactory = (*Factory)(nil)

// Factory builds source adapters from registered builders.
type Factory struct {
	mu       sync.RWMutex
	builders map[domain.SourceType]driven.AdapterBuilder
}

// NewFactory creates an empty factory. Call RegisterBuiltins to wire
// the standard adapters.
func NewFactory() *Factory {
	return &Factory{builders: make(map[domain.SourceType]driven.AdapterBuilder)}
}

// Register adds a builder for a source type, replacing any existing one.
func (f *Factory) Register(sourceType domain.SourceType, builder driven.AdapterBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[sourceType] = builder
}

// Create builds an adapter for the source's type.
func (f *Factory) Create(_ context.Context, source domain.Source) (driven.SourceAdapter, error) {
	f.mu.RLock()
	builder, ok := f.builders[source.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: source type %q", domain.ErrUnsupportedType, source.Type)
	}
	return builder(source)
}

// SupportedTypes returns registered source types, sorted for stable
// listings.
func (f *Factory) SupportedTypes() []domain.SourceType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]domain.SourceType, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// RegisterBuiltins wires the built-in source adapters. Settings supply
// cross-source defaults such as the materialisation row separator.
func RegisterBuiltins(f driven.AdapterFactory, settings *domain.AppSettings) {
	f.Register(domain.SourceTypeSpreadsheet, spreadsheet.New)
	f.Register(domain.SourceTypeGitHub, github.New)

	separator := ""
	if settings != nil {
		separator = settings.Sync.RowSeparator
	}
	f.Register(domain.SourceTypeDatabase, func(source domain.Source) (driven.SourceAdapter, error) {
		return database.New(source, separator)
	})
}
