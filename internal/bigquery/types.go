package bigquery

import (
	"context"
	"errors"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// ErrLoad marks store write failures. The load is all-or-nothing: when
// a ReplaceSales call fails the destination table is untouched.
var ErrLoad = errors.New("load failed")

// ErrQuery marks analytical query failures against the warehouse.
var ErrQuery = errors.New("query failed")

// WarehouseRepository is the warehouse surface the pipeline consumes.
type WarehouseRepository interface {
	// ReplaceSales atomically replaces the named table with the given rows.
	ReplaceSales(ctx context.Context, rows []*SaleRow, table string) error

	// StartPipelineRun inserts a pipeline_runs row with status=RUNNING
	// and returns the generated run_id.
	StartPipelineRun(ctx context.Context, sourceURI string) (string, error)

	// MarkPipelineRunFailed sets status=FAILED, finished_ts and error_message.
	MarkPipelineRunFailed(ctx context.Context, runID string, runErr error)

	// MarkPipelineRunSucceeded sets status=SUCCESS, finished_ts and the
	// cleaning/load counts for the run.
	MarkPipelineRunSucceeded(ctx context.Context, runID string, counts RunCounts) error

	// Close releases the underlying client.
	Close() error
}

// RunCounts carries the per-run bookkeeping persisted on success.
type RunCounts struct {
	RowsIn            int64
	DuplicatesRemoved int64
	DroppedMissing    int64
	DroppedParse      int64
	RowsLoaded        int64
}

// SaleRow is one cleaned sales transaction as stored in the warehouse.
type SaleRow struct {
	InvoiceID string `bigquery:"invoice_id"`

	Branch   string `bigquery:"branch"`
	City     string `bigquery:"city"`
	Category string `bigquery:"category"`

	UnitPrice *big.Rat `bigquery:"unit_price"` // NUMERIC
	Quantity  int64    `bigquery:"quantity"`

	SaleDate civil.Date `bigquery:"sale_date"`
	SaleTime civil.Time `bigquery:"sale_time"`

	PaymentMethod string `bigquery:"payment_method"`

	Rating       float64 `bigquery:"rating"`
	ProfitMargin float64 `bigquery:"profit_margin"`

	Total *big.Rat `bigquery:"total"` // NUMERIC, derived during cleaning

	RunID    string    `bigquery:"run_id"`
	LoadedTS time.Time `bigquery:"loaded_ts"`
}

// PipelineRunRow is one pipeline run audit record.
type PipelineRunRow struct {
	RunID     string `bigquery:"run_id"`
	SourceURI string `bigquery:"source_uri"`

	StartedTS  time.Time              `bigquery:"started_ts"`
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"`

	Status       string `bigquery:"status"`
	ErrorMessage string `bigquery:"error_message"`

	RowsIn            bigquery.NullInt64 `bigquery:"rows_in"`
	DuplicatesRemoved bigquery.NullInt64 `bigquery:"duplicates_removed"`
	DroppedMissing    bigquery.NullInt64 `bigquery:"dropped_missing"`
	DroppedParse      bigquery.NullInt64 `bigquery:"dropped_parse"`
	RowsLoaded        bigquery.NullInt64 `bigquery:"rows_loaded"`
}
