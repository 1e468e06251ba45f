package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/retail-sales-pipeline/internal/analytics"
	bq "github.com/dvloznov/retail-sales-pipeline/internal/bigquery"
)

// ReportResult is one report's tabular output as returned by the
// warehouse, column names included.
type ReportResult struct {
	Report  analytics.Report
	Columns []string
	Rows    [][]bigquery.Value
}

// RunReport executes one catalogue report against the sales table.
func RunReport(ctx context.Context, projectID, datasetID, table string, report analytics.Report) (*ReportResult, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: bigquery client: %v", bq.ErrQuery, err)
	}
	defer client.Close()

	return RunReportWithClient(ctx, client, projectID, datasetID, table, report)
}

// RunReportWithClient executes one catalogue report using the provided
// BigQuery client.
func RunReportWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, table string, report analytics.Report) (*ReportResult, error) {
	q := client.Query(report.SQL(projectID, datasetID, table))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: query read: %v", bq.ErrQuery, report.Name, err)
	}

	result := &ReportResult{Report: report}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: iter next: %v", bq.ErrQuery, report.Name, err)
		}
		result.Rows = append(result.Rows, row)
	}

	// Schema is available once the first page has been fetched.
	for _, field := range it.Schema {
		result.Columns = append(result.Columns, field.Name)
	}

	return result, nil
}
