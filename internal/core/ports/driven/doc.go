// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourceAdapter: Produces work items from a data source
//   - AdapterFactory: Creates adapters from configuration
//   - RevisionLedger: Revision record persistence
//   - CollectionClient: Remote collection service operations
//   - FileResolver: Turns content references into upload-ready files
//   - SourceStore: Source configuration persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentConverter: Format conversion. Without it, convertible files
//     are uploaded unconverted with a warning.
//   - DownloadCache: Download memoisation. Without it, every URL is fetched.
//   - SchedulerStore: Task state persistence. Only daemon mode needs it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector or resolver package
package driven
