package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/retail-sales-pipeline/internal/config"
	infra "github.com/dvloznov/retail-sales-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/retail-sales-pipeline/internal/logger"
	"github.com/dvloznov/retail-sales-pipeline/internal/pipeline"
	"github.com/dvloznov/retail-sales-pipeline/internal/source"
)

func main() {
	log := logger.New()

	input := flag.String("input", "", "Path or gs:// URI of the raw sales dataset (required)")
	table := flag.String("table", "", "Destination table name (defaults to SALES_TABLE)")
	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("Error: -input is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}
	if *table == "" {
		*table = cfg.SalesTable
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("input", *input).
		Str("table", *table).
		Str("dataset", cfg.DatasetID).
		Msg("Starting sales refresh")

	repo, err := infra.NewBigQueryWarehouseRepository(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	report, err := pipeline.RefreshSales(ctx, *input, *table, repo, source.Fetcher{}, pipeline.CleanOptions{})
	if err != nil {
		log.Fatal().Err(err).Msg("Sales refresh failed")
	}

	fmt.Printf("Loaded %d rows into %s.%s (in=%d dup=%d missing=%d parse=%d)\n",
		report.OutputRows, cfg.DatasetID, *table,
		report.InputRows, report.DuplicatesRemoved, report.DroppedMissing, report.DroppedParse)
}
