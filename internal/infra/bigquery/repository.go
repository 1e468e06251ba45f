package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/retail-sales-pipeline/internal/analytics"
	bq "github.com/dvloznov/retail-sales-pipeline/internal/bigquery"
)

// Re-export the shared interface for callers importing only this package.
type WarehouseRepository = bq.WarehouseRepository

// BigQueryWarehouseRepository is the concrete implementation of
// WarehouseRepository. It holds a shared BigQuery client to avoid
// creating a new connection for each operation.
type BigQueryWarehouseRepository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewBigQueryWarehouseRepository creates a repository with a shared
// BigQuery client for the given project and dataset.
func NewBigQueryWarehouseRepository(ctx context.Context, projectID, datasetID string) (*BigQueryWarehouseRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryWarehouseRepository: creating client: %w", err)
	}
	return &BigQueryWarehouseRepository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryWarehouseRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ReplaceSales delegates to ReplaceSalesWithClient with the shared client.
func (r *BigQueryWarehouseRepository) ReplaceSales(ctx context.Context, rows []*bq.SaleRow, table string) error {
	return ReplaceSalesWithClient(ctx, r.client, r.projectID, r.datasetID, rows, table)
}

// StartPipelineRun delegates to StartPipelineRunWithClient with the shared client.
func (r *BigQueryWarehouseRepository) StartPipelineRun(ctx context.Context, sourceURI string) (string, error) {
	return StartPipelineRunWithClient(ctx, r.client, r.projectID, r.datasetID, sourceURI)
}

// MarkPipelineRunFailed delegates to MarkPipelineRunFailedWithClient with the shared client.
func (r *BigQueryWarehouseRepository) MarkPipelineRunFailed(ctx context.Context, runID string, runErr error) {
	MarkPipelineRunFailedWithClient(ctx, r.client, r.projectID, r.datasetID, runID, runErr)
}

// MarkPipelineRunSucceeded delegates to MarkPipelineRunSucceededWithClient with the shared client.
func (r *BigQueryWarehouseRepository) MarkPipelineRunSucceeded(ctx context.Context, runID string, counts bq.RunCounts) error {
	return MarkPipelineRunSucceededWithClient(ctx, r.client, r.projectID, r.datasetID, runID, counts)
}

// RunReport delegates to RunReportWithClient with the shared client.
func (r *BigQueryWarehouseRepository) RunReport(ctx context.Context, table string, report analytics.Report) (*ReportResult, error) {
	return RunReportWithClient(ctx, r.client, r.projectID, r.datasetID, table, report)
}
