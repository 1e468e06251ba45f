package pipeline

import (
	"context"
	"fmt"

	bq "github.com/dvloznov/retail-sales-pipeline/internal/bigquery"
	"github.com/dvloznov/retail-sales-pipeline/internal/logger"
)

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewSalesRefreshPipeline creates the standard full-refresh pipeline:
// start run, fetch source, decode, clean, replace table, mark success.
func NewSalesRefreshPipeline(repo bq.WarehouseRepository, fetcher SourceFetcher, opts CleanOptions) *Pipeline {
	return NewPipeline(
		&StartRunStep{Repo: repo},
		&FetchSourceStep{Fetcher: fetcher, Repo: repo},
		&DecodeStep{Repo: repo},
		&CleanStep{Opts: opts},
		&LoadStep{Repo: repo},
		&MarkSuccessStep{Repo: repo},
	)
}

// RefreshSales runs the full pipeline for one source file and returns
// the cleaning report. The report is valid whenever cleaning ran, even
// if the load afterwards failed.
func RefreshSales(ctx context.Context, sourceURI, table string, repo bq.WarehouseRepository, fetcher SourceFetcher, opts CleanOptions) (CleaningReport, error) {
	log := logger.FromContext(ctx)

	state := &State{SourceURI: sourceURI, Table: table}
	if err := NewSalesRefreshPipeline(repo, fetcher, opts).Execute(ctx, state); err != nil {
		return state.Report, err
	}

	log.Info().
		Str("run_id", state.RunID).
		Int("rows_in", state.Report.InputRows).
		Int("duplicates_removed", state.Report.DuplicatesRemoved).
		Int("dropped_missing", state.Report.DroppedMissing).
		Int("dropped_parse", state.Report.DroppedParse).
		Int("rows_loaded", state.Report.OutputRows).
		Msg("Sales refresh completed")

	return state.Report, nil
}
