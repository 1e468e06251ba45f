package pipeline

import "cloud.google.com/go/civil"

// Column names expected in the raw dataset header.
const (
	ColInvoiceID     = "invoice_id"
	ColBranch        = "branch"
	ColCity          = "city"
	ColCategory      = "category"
	ColUnitPrice     = "unit_price"
	ColQuantity      = "quantity"
	ColDate          = "date"
	ColTime          = "time"
	ColPaymentMethod = "payment_method"
	ColRating        = "rating"
	ColProfitMargin  = "profit_margin"
)

// columns in canonical order, used for full-row duplicate keys.
var columns = []string{
	ColInvoiceID,
	ColBranch,
	ColCity,
	ColCategory,
	ColUnitPrice,
	ColQuantity,
	ColDate,
	ColTime,
	ColPaymentMethod,
	ColRating,
	ColProfitMargin,
}

// requiredColumns must be non-blank for a row to survive cleaning.
// profit_margin is the only optional column; it defaults to 0.
var requiredColumns = []string{
	ColInvoiceID,
	ColBranch,
	ColCity,
	ColCategory,
	ColUnitPrice,
	ColQuantity,
	ColDate,
	ColTime,
	ColPaymentMethod,
	ColRating,
}

// RawRow is one row of the raw dataset, keyed by header column name.
// Values are untyped text exactly as they appeared in the source.
type RawRow map[string]string

// Record is one cleaned sales transaction. It is created by Clean and
// immutable afterwards; Total is always derived, never sourced.
type Record struct {
	InvoiceID     string
	Branch        string
	City          string
	Category      string
	UnitPrice     float64
	Quantity      int64
	Date          civil.Date
	Time          civil.Time
	PaymentMethod string
	Rating        float64
	ProfitMargin  float64
	Total         float64
}

// CleaningReport summarizes what the cleaning stage did to the input.
// It is always produced, even when most rows are dropped.
type CleaningReport struct {
	InputRows         int
	DuplicatesRemoved int
	DroppedMissing    int
	DroppedParse      int
	OutputRows        int
}
