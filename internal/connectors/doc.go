// Package connectors provides the source adapters that feed the sync
// pipeline. Each adapter knows how to walk a specific source kind
// (spreadsheet workbooks, SQL query results, GitHub repositories) and
// produce work items from it.
//
// Adapters are registered with the Factory at startup.
package connectors
