package pipeline

import (
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Normalizer rewrites a currency-like text value into something
// strconv.ParseFloat accepts. Input formats vary by locale, so the
// stripping step is pluggable rather than hard-coded.
type Normalizer func(string) string

// DefaultMoneyNormalizer keeps digits, the decimal point and a leading
// sign, dropping currency symbols, thousands separators and whitespace.
func DefaultMoneyNormalizer(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanOptions tunes the cleaning stage. The zero value uses defaults.
type CleanOptions struct {
	// Money normalizes unit_price text before parsing.
	// Nil means DefaultMoneyNormalizer.
	Money Normalizer
}

// Clean turns raw rows into validated Records and reports every drop.
// It never fails: malformed rows are dropped and counted, duplicates
// collapse to the first occurrence, and total is recomputed from
// unit_price and quantity for every surviving row.
func Clean(rows []RawRow, opts CleanOptions) ([]*Record, CleaningReport) {
	money := opts.Money
	if money == nil {
		money = DefaultMoneyNormalizer
	}

	report := CleaningReport{InputRows: len(rows)}

	seenRows := make(map[string]struct{}, len(rows))
	seenInvoices := make(map[string]struct{}, len(rows))
	records := make([]*Record, 0, len(rows))

	for _, row := range rows {
		key := rowKey(row)
		if _, ok := seenRows[key]; ok {
			report.DuplicatesRemoved++
			continue
		}
		seenRows[key] = struct{}{}

		if missingRequired(row) {
			report.DroppedMissing++
			continue
		}

		rec, ok := parseRecord(row, money)
		if !ok {
			report.DroppedParse++
			continue
		}

		// Natural-key dedup: two differently-formatted rows for the
		// same invoice still collapse to the first one parsed.
		if _, ok := seenInvoices[rec.InvoiceID]; ok {
			report.DuplicatesRemoved++
			continue
		}
		seenInvoices[rec.InvoiceID] = struct{}{}

		rec.Total = rec.UnitPrice * float64(rec.Quantity)
		records = append(records, rec)
	}

	report.OutputRows = len(records)
	return records, report
}

func rowKey(row RawRow) string {
	var b strings.Builder
	for _, col := range columns {
		b.WriteString(row[col])
		b.WriteByte('\x1f')
	}
	return b.String()
}

func missingRequired(row RawRow) bool {
	for _, col := range requiredColumns {
		if strings.TrimSpace(row[col]) == "" {
			return true
		}
	}
	return false
}

// parseRecord coerces one raw row. Any malformed or out-of-bounds value
// rejects the whole row.
func parseRecord(row RawRow, money Normalizer) (*Record, bool) {
	unitPrice, err := strconv.ParseFloat(money(row[ColUnitPrice]), 64)
	if err != nil || unitPrice < 0 {
		return nil, false
	}

	quantity, err := strconv.ParseInt(row[ColQuantity], 10, 64)
	if err != nil || quantity <= 0 {
		return nil, false
	}

	date, ok := parseDate(row[ColDate])
	if !ok {
		return nil, false
	}

	timeOfDay, ok := parseTime(row[ColTime])
	if !ok {
		return nil, false
	}

	rating, err := strconv.ParseFloat(row[ColRating], 64)
	if err != nil || rating < 0 || rating > 10 {
		return nil, false
	}

	margin := 0.0
	if raw := strings.TrimSpace(row[ColProfitMargin]); raw != "" {
		margin, err = strconv.ParseFloat(raw, 64)
		if err != nil || margin < 0 || margin > 1 {
			return nil, false
		}
	}

	return &Record{
		InvoiceID:     row[ColInvoiceID],
		Branch:        row[ColBranch],
		City:          row[ColCity],
		Category:      row[ColCategory],
		UnitPrice:     unitPrice,
		Quantity:      quantity,
		Date:          date,
		Time:          timeOfDay,
		PaymentMethod: row[ColPaymentMethod],
		Rating:        rating,
		ProfitMargin:  margin,
	}, true
}

// parseDate accepts the source's DD/MM/YY format, with a DD/MM/YYYY
// fallback for re-exported files.
func parseDate(s string) (civil.Date, bool) {
	for _, layout := range []string{"02/01/06", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

func parseTime(s string) (civil.Time, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.TimeOf(t), true
		}
	}
	return civil.Time{}, false
}
