package driven

import (
	"context"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

// SheetRow is one spreadsheet row with its header-labelled cells.
type SheetRow struct {
	// Number is the 1-based row number in the sheet, header included.
	Number int

	// Cells holds header-labelled values in column order.
	Cells domain.Metadata

	// Hyperlink is the row's primary hyperlink, empty when none.
	Hyperlink string

	// Hidden is true for rows hidden in the source workbook.
	Hidden bool
}

// SpreadsheetReader exposes workbook structure to the spreadsheet adapter.
// Implementations exist for local XLSX workbooks and Google Sheets.
type SpreadsheetReader interface {
	// SheetNames returns visible sheet names in workbook order.
	// Hidden sheets are omitted entirely.
	SheetNames(ctx context.Context) ([]string, error)

	// Rows returns a sheet's data rows (everything after the header row),
	// labelled with the detected header. Hidden rows are included with
	// Hidden set so the adapter owns the skip decision.
	Rows(ctx context.Context, sheet string) ([]SheetRow, error)

	// Close releases the underlying workbook.
	Close() error
}

// RowQuerier executes a source query and returns column-labelled rows.
// Each row's metadata preserves the result set's column order.
type RowQuerier interface {
	// Query runs the statement and materialises all rows.
	Query(ctx context.Context, query string) ([]domain.Metadata, error)

	// Close releases the connection.
	Close() error
}
