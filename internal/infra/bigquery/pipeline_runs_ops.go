package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	bq "github.com/dvloznov/retail-sales-pipeline/internal/bigquery"
	"github.com/dvloznov/retail-sales-pipeline/internal/logger"
)

const pipelineRunsTable = "pipeline_runs"

// StartPipelineRun inserts a new pipeline_runs row with status=RUNNING
// and returns the generated run_id.
func StartPipelineRun(ctx context.Context, projectID, datasetID, sourceURI string) (string, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("StartPipelineRun: bigquery client: %w", err)
	}
	defer client.Close()

	return StartPipelineRunWithClient(ctx, client, projectID, datasetID, sourceURI)
}

// StartPipelineRunWithClient inserts a new pipeline_runs row with
// status=RUNNING using the provided BigQuery client.
func StartPipelineRunWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, sourceURI string) (string, error) {
	if err := ensurePipelineRunsTable(ctx, client, projectID, datasetID); err != nil {
		return "", fmt.Errorf("StartPipelineRun: %w", err)
	}

	runID := uuid.NewString()

	sql := fmt.Sprintf(`
		INSERT `+"`%s.%s.%s`"+` (run_id, source_uri, started_ts, status)
		VALUES (@run_id, @source_uri, @started_ts, @status)
	`, projectID, datasetID, pipelineRunsTable)

	params := []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "source_uri", Value: sourceURI},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: "RUNNING"},
	}

	if err := runStatement(ctx, client, sql, params); err != nil {
		return "", fmt.Errorf("StartPipelineRun: inserting run row: %w", err)
	}

	return runID, nil
}

// MarkPipelineRunFailed sets status=FAILED, finished_ts and error_message.
// Failures here are logged, not returned; the original pipeline error is
// the one worth surfacing.
func MarkPipelineRunFailed(ctx context.Context, projectID, datasetID, runID string, runErr error) {
	log := logger.FromContext(ctx)

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkPipelineRunFailed: bigquery client error")
		return
	}
	defer client.Close()

	MarkPipelineRunFailedWithClient(ctx, client, projectID, datasetID, runID, runErr)
}

// MarkPipelineRunFailedWithClient sets status=FAILED, finished_ts and
// error_message using the provided BigQuery client.
func MarkPipelineRunFailedWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, runID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	sql := fmt.Sprintf(`
		UPDATE `+"`%s.%s.%s`"+`
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, projectID, datasetID, pipelineRunsTable)

	params := []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "run_id", Value: runID},
	}

	if err := runStatement(ctx, client, sql, params); err != nil {
		log.Error().
			Err(err).
			Str("run_id", runID).
			Msg("MarkPipelineRunFailed: updating run row")
	}
}

// MarkPipelineRunSucceeded sets status=SUCCESS, finished_ts and the
// per-run cleaning/load counts.
func MarkPipelineRunSucceeded(ctx context.Context, projectID, datasetID, runID string, counts bq.RunCounts) error {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return fmt.Errorf("MarkPipelineRunSucceeded: bigquery client: %w", err)
	}
	defer client.Close()

	return MarkPipelineRunSucceededWithClient(ctx, client, projectID, datasetID, runID, counts)
}

// MarkPipelineRunSucceededWithClient sets status=SUCCESS, finished_ts
// and counts using the provided BigQuery client.
func MarkPipelineRunSucceededWithClient(ctx context.Context, client *bigquery.Client, projectID, datasetID, runID string, counts bq.RunCounts) error {
	sql := fmt.Sprintf(`
		UPDATE `+"`%s.%s.%s`"+`
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    rows_in = @rows_in,
		    duplicates_removed = @duplicates_removed,
		    dropped_missing = @dropped_missing,
		    dropped_parse = @dropped_parse,
		    rows_loaded = @rows_loaded
		WHERE run_id = @run_id
	`, projectID, datasetID, pipelineRunsTable)

	params := []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "rows_in", Value: counts.RowsIn},
		{Name: "duplicates_removed", Value: counts.DuplicatesRemoved},
		{Name: "dropped_missing", Value: counts.DroppedMissing},
		{Name: "dropped_parse", Value: counts.DroppedParse},
		{Name: "rows_loaded", Value: counts.RowsLoaded},
		{Name: "run_id", Value: runID},
	}

	if err := runStatement(ctx, client, sql, params); err != nil {
		return fmt.Errorf("MarkPipelineRunSucceeded: updating run row: %w", err)
	}

	return nil
}

func ensurePipelineRunsTable(ctx context.Context, client *bigquery.Client, projectID, datasetID string) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS `+"`%s.%s.%s`"+` (
			run_id             STRING    NOT NULL,
			source_uri         STRING    NOT NULL,
			started_ts         TIMESTAMP NOT NULL,
			finished_ts        TIMESTAMP,
			status             STRING    NOT NULL,
			error_message      STRING,
			rows_in            INT64,
			duplicates_removed INT64,
			dropped_missing    INT64,
			dropped_parse      INT64,
			rows_loaded        INT64
		)
	`, projectID, datasetID, pipelineRunsTable)

	if err := runStatement(ctx, client, sql, nil); err != nil {
		return fmt.Errorf("ensuring %s table: %w", pipelineRunsTable, err)
	}

	return nil
}
