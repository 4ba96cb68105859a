package spreadsheet

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ingesta-cli/internal/connectors/spreadsheet/gsheets"
	"github.com/custodia-labs/ingesta-cli/internal/connectors/spreadsheet/xlsx"
	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// Adapter produces one work item per hyperlinked workbook row.
type Adapter struct {
	sourceID  string
	keyColumn string

	// open creates a fresh reader per scan, so every Produce call sees
	// the workbook's current state.
	open func(ctx context.Context) (driven.SpreadsheetReader, error)
}

var _ driven.SourceAdapter = (*Adapter)(nil)

// New creates an adapter from a stored source definition, picking the
// XLSX or Google Sheets reader from the path setting.
func New(source domain.Source) (driven.SourceAdapter, error) {
	path := source.Setting("path", "")
	if path == "" {
		return nil, fmt.Errorf("%w: spreadsheet source needs a path", domain.ErrInvalidInput)
	}

	a := &Adapter{
		sourceID:  source.ID,
		keyColumn: source.Setting("key_column", ""),
	}

	if gsheets.IsSheetsURL(path) {
		id, err := gsheets.SpreadsheetID(path)
		if err != nil {
			return nil, err
		}
		credentials := source.Setting("credentials", "")
		apiKey := source.Setting("api_key", "")
		a.open = func(ctx context.Context) (driven.SpreadsheetReader, error) {
			return gsheets.Open(ctx, id, credentials, apiKey)
		}
	} else {
		a.open = func(ctx context.Context) (driven.SpreadsheetReader, error) {
			return xlsx.Open(path)
		}
	}

	return a, nil
}

// newWithReader wires a fixed reader, used by tests.
func newWithReader(sourceID, keyColumn string, reader driven.SpreadsheetReader) *Adapter {
	return &Adapter{
		sourceID:  sourceID,
		keyColumn: keyColumn,
		open: func(context.Context) (driven.SpreadsheetReader, error) {
			return reader, nil
		},
	}
}

// Type returns the adapter type identifier.
func (a *Adapter) Type() domain.SourceType {
	return domain.SourceTypeSpreadsheet
}

// SourceID returns the configured source ID.
func (a *Adapter) SourceID() string {
	return a.sourceID
}

// Validate checks the workbook opens and lists at least its sheets.
func (a *Adapter) Validate(ctx context.Context) error {
	reader, err := a.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer reader.Close()

	if _, err := reader.SheetNames(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return nil
}

// Produce walks every visible sheet in order and streams an item per
// visible hyperlinked row. A workbook that cannot be opened or read is
// terminal; an individual row without a hyperlink is skipped.
func (a *Adapter) Produce(ctx context.Context) (<-chan domain.WorkItem, <-chan error) {
	items := make(chan domain.WorkItem)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		reader, err := a.open(ctx)
		if err != nil {
			errs <- fmt.Errorf("%w: opening workbook: %v", domain.ErrSourceUnavailable, err)
			return
		}
		defer reader.Close()

		sheetNames, err := reader.SheetNames(ctx)
		if err != nil {
			errs <- fmt.Errorf("%w: listing sheets: %v", domain.ErrSourceUnavailable, err)
			return
		}

		for _, sheet := range sheetNames {
			rows, err := reader.Rows(ctx, sheet)
			if err != nil {
				errs <- fmt.Errorf("%w: reading sheet %q: %v", domain.ErrSourceUnavailable, sheet, err)
				return
			}

			for _, row := range rows {
				if row.Hidden {
					continue
				}
				if row.Hyperlink == "" {
					logger.Debug("spreadsheet: %s!%d has no hyperlink, skipping", sheet, row.Number)
					continue
				}

				select {
				case items <- a.itemFor(sheet, row):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return items, errs
}

// Close releases resources. Readers are scoped to each scan.
func (a *Adapter) Close() error {
	return nil
}

// itemFor maps a row to a work item. The fingerprint covers the
// hyperlink and every cell value in column order, so any edit to the
// row re-ingests it.
func (a *Adapter) itemFor(sheet string, row driven.SheetRow) domain.WorkItem {
	fields := make([]string, 0, len(row.Cells)+1)
	fields = append(fields, row.Hyperlink)
	for _, cell := range row.Cells {
		fields = append(fields, cell.Value)
	}

	key := fmt.Sprintf("%s!%d", sheet, row.Number)
	if a.keyColumn != "" {
		if v, ok := row.Cells.Get(a.keyColumn); ok && v != "" {
			key = v
		}
	}

	return domain.WorkItem{
		SourceKey:           key,
		ContentRef:          row.Hyperlink,
		Metadata:            row.Cells.Clone(),
		RevisionFingerprint: domain.Fingerprint(fields...),
	}
}
