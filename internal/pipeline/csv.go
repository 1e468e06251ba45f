package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrIngestion marks failures where the input as a whole is unreadable.
// Per-row problems never surface as errors; they are counted in the
// CleaningReport instead.
var ErrIngestion = errors.New("ingestion failed")

// DecodeCSV parses comma-delimited input with a header row into RawRows.
func DecodeCSV(r io.Reader) ([]RawRow, error) {
	return DecodeDelimited(r, ',')
}

// DecodeDelimited parses delimited input with a header row into RawRows.
// Header names are lower-cased and trimmed so the source file may use
// "Invoice_ID", "invoice_id" or " invoice_id " interchangeably.
func DecodeDelimited(r io.Reader, comma rune) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrIngestion)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrIngestion, err)
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []RawRow
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading row %d: %v", ErrIngestion, len(rows)+2, err)
		}

		row := make(RawRow, len(names))
		for i, name := range names {
			if i < len(fields) {
				row[name] = strings.TrimSpace(fields[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
