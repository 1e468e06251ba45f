package bigquery

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	bq "github.com/dvloznov/retail-sales-pipeline/internal/bigquery"
	"github.com/dvloznov/retail-sales-pipeline/internal/logger"
)

// salesSchemaDDL is the column list of the sales table. The destination
// is recreated from it on every load; this pipeline is full-refresh,
// not incremental.
const salesSchemaDDL = `
	invoice_id     STRING    NOT NULL,
	branch         STRING    NOT NULL,
	city           STRING    NOT NULL,
	category       STRING    NOT NULL,
	unit_price     NUMERIC   NOT NULL,
	quantity       INT64     NOT NULL,
	sale_date      DATE      NOT NULL,
	sale_time      TIME      NOT NULL,
	payment_method STRING    NOT NULL,
	rating         FLOAT64   NOT NULL,
	profit_margin  FLOAT64   NOT NULL,
	total          NUMERIC   NOT NULL,
	run_id         STRING    NOT NULL,
	loaded_ts      TIMESTAMP NOT NULL
`

// ReplaceSales atomically replaces dataset.table with the given rows.
func ReplaceSales(ctx context.Context, projectID, datasetID string, rows []*bq.SaleRow, table string) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("%w: bigquery client: %v", bq.ErrLoad, err)
	}
	defer client.Close()

	return ReplaceSalesWithClient(ctx, client, projectID, datasetID, rows, table)
}

// ReplaceSalesWithClient atomically replaces dataset.table with the
// given rows using the provided BigQuery client.
//
// The rows are first inserted into a run-scoped staging table; the
// destination is then swapped in a single CREATE OR REPLACE statement.
// On any failure the staging table is dropped and the destination keeps
// the previous load's contents.
func ReplaceSalesWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID string, rows []*bq.SaleRow, table string) error {
	log := logger.FromContext(ctx)

	staging := fmt.Sprintf("%s_staging_%s", table, strings.ReplaceAll(uuid.NewString()[:8], "-", ""))

	createSQL := fmt.Sprintf("CREATE TABLE `%s.%s.%s` (%s)", projectID, datasetID, staging, salesSchemaDDL)
	if err := runStatement(ctx, client, createSQL, nil); err != nil {
		return fmt.Errorf("%w: creating staging table %s: %v", bq.ErrLoad, staging, err)
	}

	inserter := client.DatasetInProject(projectID, datasetID).Table(staging).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		dropStaging(ctx, client, projectID, datasetID, staging)
		return fmt.Errorf("%w: inserting %d rows into staging: %v", bq.ErrLoad, len(rows), err)
	}

	swapSQL := fmt.Sprintf(
		"CREATE OR REPLACE TABLE `%s.%s.%s` AS SELECT * FROM `%s.%s.%s`",
		projectID, datasetID, table, projectID, datasetID, staging,
	)
	if err := runStatement(ctx, client, swapSQL, nil); err != nil {
		dropStaging(ctx, client, projectID, datasetID, staging)
		return fmt.Errorf("%w: swapping staging into %s: %v", bq.ErrLoad, table, err)
	}

	dropStaging(ctx, client, projectID, datasetID, staging)

	log.Info().
		Str("table", table).
		Int("rows", len(rows)).
		Msg("Replaced sales table")

	return nil
}

// dropStaging is best-effort; a leftover staging table is harmless and
// the next run uses a fresh suffix.
func dropStaging(ctx context.Context, client *bigquery.Client, projectID, datasetID, staging string) {
	log := logger.FromContext(ctx)

	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS `%s.%s.%s`", projectID, datasetID, staging)
	if err := runStatement(ctx, client, dropSQL, nil); err != nil {
		log.Warn().
			Err(err).
			Str("staging_table", staging).
			Msg("Failed to drop staging table")
	}
}
