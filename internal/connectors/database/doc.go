// Package database implements a source adapter over SQL query results.
//
// Each result row becomes one work item. The source designates column
// roles: a reference column whose value resolves to a file, content
// columns whose values are materialised into a labelled text payload,
// and metadata columns passed through to the uploaded document. A row
// with a non-empty reference is ingested by reference; otherwise its
// content columns materialise; a row with neither is skipped.
//
// Source settings:
//
//   - dsn: database location. A plain path or sqlite:// URL opens a
//     SQLite database; file: URIs pass through to the driver.
//   - query: the SQL statement to run. One of query or query_file is
//     required.
//   - query_file: path to a file holding the statement, re-read on
//     every scan.
//   - ref_column: column holding the file path or URL.
//   - content_columns: comma-separated columns materialised as
//     "## column" blocks, joined by the row separator.
//   - metadata_columns: comma-separated pass-through columns.
//     Default: every column not designated elsewhere.
//   - key_column: column holding the item's source key. Default: the
//     reference value, then the row fingerprint.
//   - row_separator: overrides the configured block separator.
package database
