// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Ingesta. It lets AI assistants trigger sync runs and inspect sources,
// collections and ledger state.
package mcp

import "errors"

// ErrMissingSyncService is returned when the sync orchestrator is not provided.
var ErrMissingSyncService = errors.New("mcp: sync orchestrator is required")
