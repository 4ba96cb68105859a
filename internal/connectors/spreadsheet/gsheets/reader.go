// Package gsheets reads Google Sheets workbooks through the Sheets API.
package gsheets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// Reader exposes one spreadsheet through the API. It holds no
// connection state; every call is a fresh request.
type Reader struct {
	svc *sheets.Service
	id  string
}

var _ driven.SpreadsheetReader = (*Reader)(nil)

// Open creates a reader for the given spreadsheet ID. Either a service
// account credentials file or an API key must be provided; API keys
// only reach sheets shared by link.
func Open(ctx context.Context, spreadsheetID, credentialsFile, apiKey string) (*Reader, error) {
	var opts []option.ClientOption
	switch {
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	default:
		return nil, fmt.Errorf("%w: google sheets needs credentials or api_key", domain.ErrInvalidInput)
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &Reader{svc: svc, id: spreadsheetID}, nil
}

// SheetNames returns visible sheet titles in spreadsheet order.
func (r *Reader) SheetNames(ctx context.Context) ([]string, error) {
	doc, err := r.svc.Spreadsheets.Get(r.id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching spreadsheet %s: %w", r.id, err)
	}

	var names []string
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && !sheet.Properties.Hidden {
			names = append(names, sheet.Properties.Title)
		}
	}
	return names, nil
}

// Rows returns the sheet's data rows with grid metadata, so hidden
// rows and cell hyperlinks survive the trip.
func (r *Reader) Rows(ctx context.Context, sheet string) ([]driven.SheetRow, error) {
	doc, err := r.svc.Spreadsheets.Get(r.id).
		Ranges(quoteRange(sheet)).
		IncludeGridData(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetching sheet %q: %w", sheet, err)
	}
	if len(doc.Sheets) == 0 || len(doc.Sheets[0].Data) == 0 {
		return nil, nil
	}
	return rowsFromGrid(doc.Sheets[0].Data[0]), nil
}

// Close releases resources. The API client holds none.
func (r *Reader) Close() error {
	return nil
}

// rowsFromGrid assembles labelled rows from one grid range. The first
// non-empty row is the header.
func rowsFromGrid(grid *sheets.GridData) []driven.SheetRow {
	headerIdx := -1
	var header []string
	for i, row := range grid.RowData {
		if values := cellValues(row); !allEmpty(values) {
			headerIdx, header = i, values
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	var out []driven.SheetRow
	for i := headerIdx + 1; i < len(grid.RowData); i++ {
		row := grid.RowData[i]
		values := cellValues(row)
		if allEmpty(values) {
			continue
		}

		meta := domain.Metadata{}
		for c, value := range values {
			if c >= len(header) || header[c] == "" || value == "" {
				continue
			}
			meta.Set(header[c], value)
		}

		hidden := false
		if i < len(grid.RowMetadata) && grid.RowMetadata[i] != nil {
			hidden = grid.RowMetadata[i].HiddenByUser || grid.RowMetadata[i].HiddenByFilter
		}

		out = append(out, driven.SheetRow{
			Number:    int(grid.StartRow) + i + 1,
			Cells:     meta,
			Hyperlink: primaryHyperlink(row),
			Hidden:    hidden,
		})
	}
	return out
}

func cellValues(row *sheets.RowData) []string {
	if row == nil {
		return nil
	}
	values := make([]string, len(row.Values))
	for i, cell := range row.Values {
		if cell != nil {
			values[i] = cell.FormattedValue
		}
	}
	return values
}

// primaryHyperlink returns the leftmost hyperlink in the row. The API
// fills CellData.Hyperlink for both attached links and HYPERLINK
// formulas.
func primaryHyperlink(row *sheets.RowData) string {
	if row == nil {
		return ""
	}
	for _, cell := range row.Values {
		if cell != nil && cell.Hyperlink != "" {
			return cell.Hyperlink
		}
	}
	return ""
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// quoteRange wraps a sheet title in single quotes so titles with
// spaces form a valid A1 range.
func quoteRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

var sheetsURLPattern = regexp.MustCompile(`spreadsheets/d/([a-zA-Z0-9\-_]+)`)

// IsSheetsURL reports whether path addresses a Google Sheets document.
func IsSheetsURL(path string) bool {
	return strings.Contains(path, "docs.google.com/spreadsheets")
}

// SpreadsheetID extracts the document ID from a Google Sheets URL.
func SpreadsheetID(url string) (string, error) {
	m := sheetsURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: no spreadsheet ID in %q", domain.ErrInvalidInput, url)
	}
	return m[1], nil
}
