// Package parser turns raw CSV and XLSX input into aligned rows for the
// validation pipeline.
package parser

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadcheck/internal/model"
)

// ErrEmptyInput is returned when the input has no header row or no data
// rows. It is one of the two conditions that abort a run before any
// report is produced.
var ErrEmptyInput = eris.New("parser: empty input, no header or data rows")

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
}

// StreamCSV reads the header eagerly and then emits data rows on a
// channel. Quoted fields, embedded newlines, and escaped quotes are
// handled by encoding/csv; rows whose cell count differs from the
// header are emitted with Malformed set instead of failing the run.
// Caller must consume the row channel; both channels are closed when
// processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]string, <-chan model.RawRow, <-chan error, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // width checked against the header instead

	header, err := readHeader(reader)
	if err != nil {
		return nil, nil, nil, err
	}

	rowCh := make(chan model.RawRow, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		index := 0
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "parser: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "parser: read row")
				return
			}
			if blankRow(record) {
				continue
			}

			index++
			row := model.RawRow{
				Index:     index,
				Cells:     record,
				Malformed: len(record) != len(header),
			}

			select {
			case rowCh <- row:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "parser: context cancelled")
				return
			}
		}
	}()

	return header, rowCh, errCh, nil
}

// readHeader returns the first non-blank record with cells trimmed.
func readHeader(reader *csv.Reader) ([]string, error) {
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, ErrEmptyInput
		}
		if err != nil {
			return nil, eris.Wrap(err, "parser: read header")
		}
		if blankRow(record) {
			continue
		}
		header := make([]string, len(record))
		for i, cell := range record {
			header[i] = strings.TrimSpace(cell)
		}
		return header, nil
	}
}

// blankRow reports whether every cell is empty after trimming.
func blankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
