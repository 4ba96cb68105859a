// Package xlsx reads local XLSX workbooks through excelize.
package xlsx

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// Reader exposes one open workbook.
type Reader struct {
	f *excelize.File
}

var _ driven.SpreadsheetReader = (*Reader)(nil)

// Open opens the workbook at path.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return &Reader{f: f}, nil
}

// SheetNames returns visible sheet names in workbook order.
func (r *Reader) SheetNames(ctx context.Context) ([]string, error) {
	var names []string
	for _, name := range r.f.GetSheetList() {
		visible, err := r.f.GetSheetVisible(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q visibility: %w", name, err)
		}
		if visible {
			names = append(names, name)
		}
	}
	return names, nil
}

// Rows returns the sheet's data rows. The first non-empty row is taken
// as the header; cells in later rows are labelled by it. Hidden rows
// are included with Hidden set.
func (r *Reader) Rows(ctx context.Context, sheet string) ([]driven.SheetRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := r.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	headerIdx, header := findHeader(rows)
	if headerIdx < 0 {
		return nil, nil
	}

	var out []driven.SheetRow
	for i := headerIdx + 1; i < len(rows); i++ {
		cells := rows[i]
		if rowEmpty(cells) {
			continue
		}
		rowNum := i + 1

		meta := domain.Metadata{}
		for c, value := range cells {
			if c >= len(header) || header[c] == "" || value == "" {
				continue
			}
			meta.Set(header[c], value)
		}

		visible, err := r.f.GetRowVisible(sheet, rowNum)
		if err != nil {
			return nil, fmt.Errorf("row %d visibility: %w", rowNum, err)
		}

		out = append(out, driven.SheetRow{
			Number:    rowNum,
			Cells:     meta,
			Hyperlink: r.primaryHyperlink(sheet, rowNum, len(header)),
			Hidden:    !visible,
		})
	}
	return out, nil
}

// Close releases the workbook.
func (r *Reader) Close() error {
	return r.f.Close()
}

// primaryHyperlink returns the leftmost hyperlink in the row, whether
// attached to the cell or produced by a HYPERLINK formula.
func (r *Reader) primaryHyperlink(sheet string, rowNum, width int) string {
	for col := 1; col <= width; col++ {
		cell, err := excelize.CoordinatesToCellName(col, rowNum)
		if err != nil {
			continue
		}
		if ok, link, err := r.f.GetCellHyperLink(sheet, cell); err == nil && ok && link != "" {
			return link
		}
		if formula, err := r.f.GetCellFormula(sheet, cell); err == nil && formula != "" {
			if link := hyperlinkFromFormula(formula); link != "" {
				return link
			}
		}
	}
	return ""
}

// hyperlinkFormula matches the first argument of HYPERLINK("url", ...).
var hyperlinkFormula = regexp.MustCompile(`(?i)^\s*HYPERLINK\s*\(\s*"([^"]+)"`)

func hyperlinkFromFormula(formula string) string {
	m := hyperlinkFormula.FindStringSubmatch(strings.TrimPrefix(formula, "="))
	if m == nil {
		return ""
	}
	return m[1]
}

func findHeader(rows [][]string) (int, []string) {
	for i, cells := range rows {
		if !rowEmpty(cells) {
			return i, cells
		}
	}
	return -1, nil
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
