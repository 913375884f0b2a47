package parser

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadcheck/internal/model"
)

// XLSXOptions configures the XLSX row source.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// StreamXLSX opens an XLSX workbook and emits data rows from one sheet
// the same way StreamCSV does, so both formats feed the same pipeline.
// The first non-blank row is the header.
func StreamXLSX(ctx context.Context, path string, opts XLSXOptions) ([]string, <-chan model.RawRow, <-chan error, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "parser: open xlsx")
	}

	sheet, err := pickSheet(f, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	var header []string
	start := -1
	for i, row := range sheet.Rows {
		cells := rowToStrings(row)
		if blankRow(cells) {
			continue
		}
		header = make([]string, len(cells))
		for j, c := range cells {
			header[j] = strings.TrimSpace(c)
		}
		start = i + 1
		break
	}
	if header == nil {
		return nil, nil, nil, ErrEmptyInput
	}

	rowCh := make(chan model.RawRow, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		index := 0
		for _, row := range sheet.Rows[start:] {
			cells := rowToStrings(row)
			if blankRow(cells) {
				continue
			}
			index++
			raw := model.RawRow{
				Index:     index,
				Cells:     cells,
				Malformed: len(cells) != len(header),
			}
			select {
			case rowCh <- raw:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "parser: context cancelled")
				return
			}
		}
	}()

	return header, rowCh, errCh, nil
}

// pickSheet resolves the target sheet by name or index.
func pickSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("parser: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("parser: sheet index %d out of range (%d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// rowToStrings converts a sheet row to string cells.
func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
