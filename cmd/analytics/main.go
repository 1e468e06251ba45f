package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/retail-sales-pipeline/internal/analytics"
	"github.com/dvloznov/retail-sales-pipeline/internal/config"
	infra "github.com/dvloznov/retail-sales-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/retail-sales-pipeline/internal/logger"
	"github.com/dvloznov/retail-sales-pipeline/internal/pipeline"
	"github.com/dvloznov/retail-sales-pipeline/internal/source"
)

func main() {
	log := logger.New()

	reportName := flag.String("report", "all", "Report name, or 'all' for the whole catalogue")
	local := flag.Bool("local", false, "Evaluate in memory instead of against the warehouse")
	input := flag.String("input", "", "Raw dataset path or gs:// URI (required with -local)")
	flag.Parse()

	reports, err := selectReports(*reportName)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown report")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	if *local {
		if *input == "" {
			log.Fatal().Msg("Error: -input is required with -local")
		}
		runLocal(ctx, log, *input, reports)
		return
	}

	runWarehouse(ctx, log, reports)
}

func selectReports(name string) ([]analytics.Report, error) {
	if name == "all" {
		return analytics.Catalogue(), nil
	}
	report, ok := analytics.ReportByName(name)
	if !ok {
		return nil, fmt.Errorf("no report named %q", name)
	}
	return []analytics.Report{report}, nil
}

func runWarehouse(ctx context.Context, log zerolog.Logger, reports []analytics.Report) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	repo, err := infra.NewBigQueryWarehouseRepository(ctx, cfg.ProjectID, cfg.DatasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	for _, report := range reports {
		result, err := repo.RunReport(ctx, cfg.SalesTable, report)
		if err != nil {
			log.Fatal().Err(err).Str("report", report.Name).Msg("Report failed")
		}
		printHeader(report)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for i, col := range result.Columns {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, col)
		}
		fmt.Fprintln(w)
		for _, row := range result.Rows {
			for i, v := range row {
				if i > 0 {
					fmt.Fprint(w, "\t")
				}
				fmt.Fprintf(w, "%v", v)
			}
			fmt.Fprintln(w)
		}
		w.Flush()
	}
}

func runLocal(ctx context.Context, log zerolog.Logger, input string, reports []analytics.Report) {
	raw, err := source.Fetcher{}.Fetch(ctx, input)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch dataset")
	}

	rows, err := pipeline.DecodeCSV(bytes.NewReader(raw))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode dataset")
	}

	records, report := pipeline.Clean(rows, pipeline.CleanOptions{})
	log.Info().
		Int("rows_in", report.InputRows).
		Int("rows_clean", report.OutputRows).
		Msg("Cleaned dataset for local evaluation")

	for _, rep := range reports {
		printHeader(rep)
		printLocal(rep.Name, records)
	}
}

func printHeader(report analytics.Report) {
	fmt.Printf("\n=== %s ===\n%s\n", report.Name, report.Question)
}

func printLocal(name string, records []*pipeline.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	switch name {
	case "payment_method_volume":
		fmt.Fprintln(w, "payment_method\ttransactions\titems_sold")
		for _, r := range analytics.PaymentMethodVolume(records) {
			fmt.Fprintf(w, "%s\t%d\t%d\n", r.PaymentMethod, r.Transactions, r.ItemsSold)
		}
	case "top_category_by_rating":
		fmt.Fprintln(w, "branch\tcategory\tavg_rating")
		for _, r := range analytics.TopCategoryByRating(records) {
			fmt.Fprintf(w, "%s\t%s\t%.2f\n", r.Branch, r.Category, r.AvgRating)
		}
	case "busiest_day":
		fmt.Fprintln(w, "branch\tday_name\ttransactions")
		for _, r := range analytics.BusiestDay(records) {
			fmt.Fprintf(w, "%s\t%s\t%d\n", r.Branch, r.DayName, r.Transactions)
		}
	case "items_per_payment_method":
		fmt.Fprintln(w, "payment_method\titems_sold")
		for _, r := range analytics.ItemsPerPaymentMethod(records) {
			fmt.Fprintf(w, "%s\t%d\n", r.PaymentMethod, r.ItemsSold)
		}
	case "rating_stats_by_city":
		fmt.Fprintln(w, "city\tcategory\tmin_rating\tmax_rating\tavg_rating")
		for _, r := range analytics.RatingStatsByCity(records) {
			fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.2f\n", r.City, r.Category, r.MinRating, r.MaxRating, r.AvgRating)
		}
	case "profit_by_category":
		fmt.Fprintln(w, "category\trevenue\tprofit")
		for _, r := range analytics.ProfitByCategory(records) {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", r.Category, r.Revenue, r.Profit)
		}
	case "top_payment_method_per_branch":
		fmt.Fprintln(w, "branch\tpayment_method\ttransactions")
		for _, r := range analytics.TopPaymentMethodPerBranch(records) {
			fmt.Fprintf(w, "%s\t%s\t%d\n", r.Branch, r.PaymentMethod, r.Transactions)
		}
	case "shift_volume":
		fmt.Fprintln(w, "branch\tshift\ttransactions")
		for _, r := range analytics.ShiftVolumePerBranch(records) {
			fmt.Fprintf(w, "%s\t%s\t%d\n", r.Branch, r.Shift, r.Transactions)
		}
	case "revenue_decline":
		fmt.Fprintln(w, "branch\trevenue_2022\trevenue_2023\tdecline_ratio")
		for _, r := range analytics.RevenueDecline(records) {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\n", r.Branch, r.Revenue2022, r.Revenue2023, r.DeclineRatio)
		}
	}
}
