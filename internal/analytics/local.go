package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/dvloznov/retail-sales-pipeline/internal/pipeline"
)

// The local evaluator answers the same nine questions as the SQL
// catalogue without a warehouse: aggregate into composite-keyed maps,
// then apply partition-local competition ranking where the report asks
// for a per-branch winner. Ties at rank 1 are all kept.

// PaymentMethodVolumeRow is one row of the payment_method_volume report.
type PaymentMethodVolumeRow struct {
	PaymentMethod string `bigquery:"payment_method"`
	Transactions  int64  `bigquery:"transactions"`
	ItemsSold     int64  `bigquery:"items_sold"`
}

// BranchCategoryRatingRow is one row of the top_category_by_rating report.
type BranchCategoryRatingRow struct {
	Branch    string  `bigquery:"branch"`
	Category  string  `bigquery:"category"`
	AvgRating float64 `bigquery:"avg_rating"`
}

// BranchDayVolumeRow is one row of the busiest_day report.
type BranchDayVolumeRow struct {
	Branch       string `bigquery:"branch"`
	DayName      string `bigquery:"day_name"`
	Transactions int64  `bigquery:"transactions"`
}

// PaymentMethodItemsRow is one row of the items_per_payment_method report.
type PaymentMethodItemsRow struct {
	PaymentMethod string `bigquery:"payment_method"`
	ItemsSold     int64  `bigquery:"items_sold"`
}

// CityCategoryRatingRow is one row of the rating_stats_by_city report.
type CityCategoryRatingRow struct {
	City      string  `bigquery:"city"`
	Category  string  `bigquery:"category"`
	MinRating float64 `bigquery:"min_rating"`
	MaxRating float64 `bigquery:"max_rating"`
	AvgRating float64 `bigquery:"avg_rating"`
}

// CategoryProfitRow is one row of the profit_by_category report.
type CategoryProfitRow struct {
	Category string  `bigquery:"category"`
	Revenue  float64 `bigquery:"revenue"`
	Profit   float64 `bigquery:"profit"`
}

// BranchPaymentMethodRow is one row of the top_payment_method_per_branch report.
type BranchPaymentMethodRow struct {
	Branch        string `bigquery:"branch"`
	PaymentMethod string `bigquery:"payment_method"`
	Transactions  int64  `bigquery:"transactions"`
}

// BranchShiftRow is one row of the shift_volume report.
type BranchShiftRow struct {
	Branch       string `bigquery:"branch"`
	Shift        string `bigquery:"shift"`
	Transactions int64  `bigquery:"transactions"`
}

// RevenueDeclineRow is one row of the revenue_decline report.
type RevenueDeclineRow struct {
	Branch       string  `bigquery:"branch"`
	Revenue2022  float64 `bigquery:"revenue_2022"`
	Revenue2023  float64 `bigquery:"revenue_2023"`
	DeclineRatio float64 `bigquery:"decline_ratio"`
}

// ShiftForHour buckets an hour-of-day into Morning/Afternoon/Evening.
func ShiftForHour(hour int) string {
	switch {
	case hour < 12:
		return "Morning"
	case hour <= 17:
		return "Afternoon"
	default:
		return "Evening"
	}
}

// DeclineRatio is the percentage revenue drop from one year to the
// next, rounded to two decimals.
func DeclineRatio(prev, curr float64) float64 {
	return round2((prev - curr) / prev * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PaymentMethodVolume counts transactions and items sold per payment
// method, busiest method first.
func PaymentMethodVolume(records []*pipeline.Record) []PaymentMethodVolumeRow {
	type agg struct {
		transactions int64
		items        int64
	}
	byMethod := make(map[string]*agg)
	for _, rec := range records {
		a := byMethod[rec.PaymentMethod]
		if a == nil {
			a = &agg{}
			byMethod[rec.PaymentMethod] = a
		}
		a.transactions++
		a.items += rec.Quantity
	}

	rows := make([]PaymentMethodVolumeRow, 0, len(byMethod))
	for method, a := range byMethod {
		rows = append(rows, PaymentMethodVolumeRow{
			PaymentMethod: method,
			Transactions:  a.transactions,
			ItemsSold:     a.items,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Transactions != rows[j].Transactions {
			return rows[i].Transactions > rows[j].Transactions
		}
		return rows[i].PaymentMethod < rows[j].PaymentMethod
	})
	return rows
}

// TopCategoryByRating keeps, for each branch, the categories tied for
// the highest average rating.
func TopCategoryByRating(records []*pipeline.Record) []BranchCategoryRatingRow {
	type agg struct {
		sum   float64
		count int64
	}
	byKey := make(map[[2]string]*agg)
	for _, rec := range records {
		key := [2]string{rec.Branch, rec.Category}
		a := byKey[key]
		if a == nil {
			a = &agg{}
			byKey[key] = a
		}
		a.sum += rec.Rating
		a.count++
	}

	all := make([]BranchCategoryRatingRow, 0, len(byKey))
	for key, a := range byKey {
		all = append(all, BranchCategoryRatingRow{
			Branch:    key[0],
			Category:  key[1],
			AvgRating: a.sum / float64(a.count),
		})
	}

	rows := keepRankOne(all,
		func(r BranchCategoryRatingRow) string { return r.Branch },
		func(r BranchCategoryRatingRow) float64 { return r.AvgRating },
	)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Branch != rows[j].Branch {
			return rows[i].Branch < rows[j].Branch
		}
		if rows[i].AvgRating != rows[j].AvgRating {
			return rows[i].AvgRating > rows[j].AvgRating
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// BusiestDay keeps, for each branch, the weekdays tied for the highest
// transaction count.
func BusiestDay(records []*pipeline.Record) []BranchDayVolumeRow {
	byKey := make(map[[2]string]int64)
	for _, rec := range records {
		day := rec.Date.In(time.UTC).Weekday().String()
		byKey[[2]string{rec.Branch, day}]++
	}

	all := make([]BranchDayVolumeRow, 0, len(byKey))
	for key, count := range byKey {
		all = append(all, BranchDayVolumeRow{
			Branch:       key[0],
			DayName:      key[1],
			Transactions: count,
		})
	}

	rows := keepRankOne(all,
		func(r BranchDayVolumeRow) string { return r.Branch },
		func(r BranchDayVolumeRow) float64 { return float64(r.Transactions) },
	)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Branch != rows[j].Branch {
			return rows[i].Branch < rows[j].Branch
		}
		if rows[i].Transactions != rows[j].Transactions {
			return rows[i].Transactions > rows[j].Transactions
		}
		return rows[i].DayName < rows[j].DayName
	})
	return rows
}

// ItemsPerPaymentMethod sums quantities per payment method.
func ItemsPerPaymentMethod(records []*pipeline.Record) []PaymentMethodItemsRow {
	byMethod := make(map[string]int64)
	for _, rec := range records {
		byMethod[rec.PaymentMethod] += rec.Quantity
	}

	rows := make([]PaymentMethodItemsRow, 0, len(byMethod))
	for method, items := range byMethod {
		rows = append(rows, PaymentMethodItemsRow{PaymentMethod: method, ItemsSold: items})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].PaymentMethod < rows[j].PaymentMethod
	})
	return rows
}

// RatingStatsByCity computes min/max/avg rating per category per city.
func RatingStatsByCity(records []*pipeline.Record) []CityCategoryRatingRow {
	type agg struct {
		min, max, sum float64
		count         int64
	}
	byKey := make(map[[2]string]*agg)
	for _, rec := range records {
		key := [2]string{rec.City, rec.Category}
		a := byKey[key]
		if a == nil {
			a = &agg{min: rec.Rating, max: rec.Rating}
			byKey[key] = a
		}
		if rec.Rating < a.min {
			a.min = rec.Rating
		}
		if rec.Rating > a.max {
			a.max = rec.Rating
		}
		a.sum += rec.Rating
		a.count++
	}

	rows := make([]CityCategoryRatingRow, 0, len(byKey))
	for key, a := range byKey {
		rows = append(rows, CityCategoryRatingRow{
			City:      key[0],
			Category:  key[1],
			MinRating: a.min,
			MaxRating: a.max,
			AvgRating: a.sum / float64(a.count),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].City != rows[j].City {
			return rows[i].City < rows[j].City
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// ProfitByCategory sums revenue and margin-weighted profit per
// category, most profitable first.
func ProfitByCategory(records []*pipeline.Record) []CategoryProfitRow {
	type agg struct {
		revenue float64
		profit  float64
	}
	byCategory := make(map[string]*agg)
	for _, rec := range records {
		a := byCategory[rec.Category]
		if a == nil {
			a = &agg{}
			byCategory[rec.Category] = a
		}
		a.revenue += rec.Total
		a.profit += rec.Total * rec.ProfitMargin
	}

	rows := make([]CategoryProfitRow, 0, len(byCategory))
	for category, a := range byCategory {
		rows = append(rows, CategoryProfitRow{
			Category: category,
			Revenue:  a.revenue,
			Profit:   a.profit,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Profit != rows[j].Profit {
			return rows[i].Profit > rows[j].Profit
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// TopPaymentMethodPerBranch keeps, for each branch, the payment methods
// tied for the highest transaction count.
func TopPaymentMethodPerBranch(records []*pipeline.Record) []BranchPaymentMethodRow {
	byKey := make(map[[2]string]int64)
	for _, rec := range records {
		byKey[[2]string{rec.Branch, rec.PaymentMethod}]++
	}

	all := make([]BranchPaymentMethodRow, 0, len(byKey))
	for key, count := range byKey {
		all = append(all, BranchPaymentMethodRow{
			Branch:        key[0],
			PaymentMethod: key[1],
			Transactions:  count,
		})
	}

	rows := keepRankOne(all,
		func(r BranchPaymentMethodRow) string { return r.Branch },
		func(r BranchPaymentMethodRow) float64 { return float64(r.Transactions) },
	)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Branch != rows[j].Branch {
			return rows[i].Branch < rows[j].Branch
		}
		if rows[i].Transactions != rows[j].Transactions {
			return rows[i].Transactions > rows[j].Transactions
		}
		return rows[i].PaymentMethod < rows[j].PaymentMethod
	})
	return rows
}

// ShiftVolumePerBranch counts transactions per shift bucket per branch.
func ShiftVolumePerBranch(records []*pipeline.Record) []BranchShiftRow {
	byKey := make(map[[2]string]int64)
	for _, rec := range records {
		byKey[[2]string{rec.Branch, ShiftForHour(rec.Time.Hour)}]++
	}

	rows := make([]BranchShiftRow, 0, len(byKey))
	for key, count := range byKey {
		rows = append(rows, BranchShiftRow{
			Branch:       key[0],
			Shift:        key[1],
			Transactions: count,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Branch != rows[j].Branch {
			return rows[i].Branch < rows[j].Branch
		}
		if rows[i].Transactions != rows[j].Transactions {
			return rows[i].Transactions > rows[j].Transactions
		}
		return rows[i].Shift < rows[j].Shift
	})
	return rows
}

// RevenueDecline returns the top five branches whose revenue dropped
// from 2022 to 2023. Branches missing from either year, or with 2023
// revenue at or above 2022, are excluded.
func RevenueDecline(records []*pipeline.Record) []RevenueDeclineRow {
	rev2022 := make(map[string]float64)
	rev2023 := make(map[string]float64)
	for _, rec := range records {
		switch rec.Date.Year {
		case 2022:
			rev2022[rec.Branch] += rec.Total
		case 2023:
			rev2023[rec.Branch] += rec.Total
		}
	}

	var rows []RevenueDeclineRow
	for branch, prev := range rev2022 {
		curr, ok := rev2023[branch]
		if !ok || prev <= curr {
			continue
		}
		rows = append(rows, RevenueDeclineRow{
			Branch:       branch,
			Revenue2022:  prev,
			Revenue2023:  curr,
			DeclineRatio: DeclineRatio(prev, curr),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DeclineRatio != rows[j].DeclineRatio {
			return rows[i].DeclineRatio > rows[j].DeclineRatio
		}
		return rows[i].Branch < rows[j].Branch
	})
	if len(rows) > 5 {
		rows = rows[:5]
	}
	return rows
}

// keepRankOne applies competition ranking within each partition and
// keeps every row tied for the best metric.
func keepRankOne[T any](rows []T, partition func(T) string, metric func(T) float64) []T {
	best := make(map[string]float64)
	for _, row := range rows {
		key := partition(row)
		if v, ok := best[key]; !ok || metric(row) > v {
			best[key] = metric(row)
		}
	}

	var kept []T
	for _, row := range rows {
		if metric(row) == best[partition(row)] {
			kept = append(kept, row)
		}
	}
	return kept
}
