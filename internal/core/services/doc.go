// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The sync coordinator owns pipeline ordering: skip checks before
// resolution, prior-revision deletes before uploads, ledger commits
// before an item counts as done. Adapters never make those calls.
package services
