package pipeline

import (
	"bytes"
	"context"
	"time"

	bq "github.com/dvloznov/retail-sales-pipeline/internal/bigquery"
)

// Step represents a single step in the refresh pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State holds the shared state across all pipeline steps.
type State struct {
	SourceURI string
	Table     string
	RunID     string
	Raw       []byte
	Rows      []RawRow
	Records   []*Record
	Report    CleaningReport
}

// StartRunStep creates the pipeline_runs audit record (status=RUNNING).
type StartRunStep struct {
	Repo bq.WarehouseRepository
}

func (s *StartRunStep) Execute(ctx context.Context, state *State) error {
	runID, err := s.Repo.StartPipelineRun(ctx, state.SourceURI)
	if err != nil {
		return err
	}
	state.RunID = runID
	return nil
}

// FetchSourceStep reads the raw dataset bytes from the source URI.
type FetchSourceStep struct {
	Fetcher SourceFetcher
	Repo    bq.WarehouseRepository
}

func (s *FetchSourceStep) Execute(ctx context.Context, state *State) error {
	raw, err := s.Fetcher.Fetch(ctx, state.SourceURI)
	if err != nil {
		s.Repo.MarkPipelineRunFailed(ctx, state.RunID, err)
		return err
	}
	state.Raw = raw
	return nil
}

// DecodeStep parses the raw bytes into header-keyed rows.
type DecodeStep struct {
	Repo bq.WarehouseRepository
}

func (s *DecodeStep) Execute(ctx context.Context, state *State) error {
	rows, err := DecodeCSV(bytes.NewReader(state.Raw))
	if err != nil {
		s.Repo.MarkPipelineRunFailed(ctx, state.RunID, err)
		return err
	}
	state.Rows = rows
	return nil
}

// CleanStep dedups, validates and coerces the rows. It cannot fail;
// drops are accounted for in the report.
type CleanStep struct {
	Opts CleanOptions
}

func (s *CleanStep) Execute(ctx context.Context, state *State) error {
	state.Records, state.Report = Clean(state.Rows, s.Opts)
	return nil
}

// LoadStep replaces the destination table with the cleaned rows.
type LoadStep struct {
	Repo bq.WarehouseRepository
}

func (s *LoadStep) Execute(ctx context.Context, state *State) error {
	rows := SaleRowsFromRecords(state.Records, state.RunID, time.Now().UTC())
	if err := s.Repo.ReplaceSales(ctx, rows, state.Table); err != nil {
		s.Repo.MarkPipelineRunFailed(ctx, state.RunID, err)
		return err
	}
	return nil
}

// MarkSuccessStep records the run outcome and counts.
type MarkSuccessStep struct {
	Repo bq.WarehouseRepository
}

func (s *MarkSuccessStep) Execute(ctx context.Context, state *State) error {
	counts := bq.RunCounts{
		RowsIn:            int64(state.Report.InputRows),
		DuplicatesRemoved: int64(state.Report.DuplicatesRemoved),
		DroppedMissing:    int64(state.Report.DroppedMissing),
		DroppedParse:      int64(state.Report.DroppedParse),
		RowsLoaded:        int64(state.Report.OutputRows),
	}
	return s.Repo.MarkPipelineRunSucceeded(ctx, state.RunID, counts)
}
