package mcp

import (
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync triggers and reports on ingestion runs.
	Sync driving.SyncOrchestrator

	// Source manages source configurations.
	Source driving.SourceService

	// Collections provides remote collection and ledger access.
	Collections driving.CollectionAdmin
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	// Source and Collections are optional
	return nil
}
