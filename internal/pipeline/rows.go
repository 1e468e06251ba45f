package pipeline

import (
	"math"
	"math/big"
	"time"

	bq "github.com/dvloznov/retail-sales-pipeline/internal/bigquery"
)

// SaleRowsFromRecords maps cleaned records onto warehouse rows, stamping
// them with the run that produced them.
func SaleRowsFromRecords(records []*Record, runID string, loadedTS time.Time) []*bq.SaleRow {
	rows := make([]*bq.SaleRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, &bq.SaleRow{
			InvoiceID:     rec.InvoiceID,
			Branch:        rec.Branch,
			City:          rec.City,
			Category:      rec.Category,
			UnitPrice:     ratFromMoney(rec.UnitPrice),
			Quantity:      rec.Quantity,
			SaleDate:      rec.Date,
			SaleTime:      rec.Time,
			PaymentMethod: rec.PaymentMethod,
			Rating:        rec.Rating,
			ProfitMargin:  rec.ProfitMargin,
			Total:         ratFromMoney(rec.Total),
			RunID:         runID,
			LoadedTS:      loadedTS,
		})
	}
	return rows
}

// ratFromMoney converts a 2-decimal currency amount to an exact NUMERIC
// value via cents.
func ratFromMoney(v float64) *big.Rat {
	return big.NewRat(int64(math.Round(v*100)), 100)
}
