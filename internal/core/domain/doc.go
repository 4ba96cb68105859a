// Package domain defines the core business entities for Ingesta.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - WorkItem: One source-derived unit of content destined for upload
//   - RevisionRecord: The ledger's memory of what was already synced
//   - Collection: Remote counterpart of a named document set
//   - RemoteDocument: A document as the remote service reports it
//   - Source: A configured data source
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
