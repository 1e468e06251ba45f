package analytics

import (
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/retail-sales-pipeline/internal/pipeline"
)

// sale builds a record with sensible defaults; mod patches fields.
func sale(mod func(*pipeline.Record)) *pipeline.Record {
	rec := &pipeline.Record{
		InvoiceID:     "1001",
		Branch:        "WALM003",
		City:          "Dallas",
		Category:      "Food and beverages",
		UnitPrice:     10,
		Quantity:      2,
		Date:          civil.Date{Year: 2023, Month: time.March, Day: 6}, // a Monday
		Time:          civil.Time{Hour: 13},
		PaymentMethod: "Cash",
		Rating:        8,
		ProfitMargin:  0.3,
		Total:         20,
	}
	if mod != nil {
		mod(rec)
	}
	return rec
}

func TestShiftForHour(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Morning"},
		{9, "Morning"},
		{11, "Morning"},
		{12, "Afternoon"},
		{13, "Afternoon"},
		{17, "Afternoon"},
		{18, "Evening"},
		{20, "Evening"},
		{23, "Evening"},
	}

	for _, tt := range tests {
		if got := ShiftForHour(tt.hour); got != tt.want {
			t.Errorf("ShiftForHour(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestDeclineRatio(t *testing.T) {
	tests := []struct {
		prev, curr float64
		want       float64
	}{
		{1000, 800, 20},
		{200, 150, 25},
		{3, 1, 66.67},
	}

	for _, tt := range tests {
		if got := DeclineRatio(tt.prev, tt.curr); got != tt.want {
			t.Errorf("DeclineRatio(%v, %v) = %v, want %v", tt.prev, tt.curr, got, tt.want)
		}
	}
}

func TestPaymentMethodVolume(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.PaymentMethod = "Cash"; r.Quantity = 3 }),
		sale(func(r *pipeline.Record) { r.PaymentMethod = "Cash"; r.Quantity = 2 }),
		sale(func(r *pipeline.Record) { r.PaymentMethod = "Ewallet"; r.Quantity = 10 }),
	}

	got := PaymentMethodVolume(records)
	want := []PaymentMethodVolumeRow{
		{PaymentMethod: "Cash", Transactions: 2, ItemsSold: 5},
		{PaymentMethod: "Ewallet", Transactions: 1, ItemsSold: 10},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PaymentMethodVolume = %+v, want %+v", got, want)
	}
}

func TestTopCategoryByRating_KeepsOnlyBranchWinner(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.Category = "X"; r.Rating = 8 }),
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.Category = "Y"; r.Rating = 9 }),
	}

	got := TopCategoryByRating(records)
	want := []BranchCategoryRatingRow{
		{Branch: "A", Category: "Y", AvgRating: 9},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopCategoryByRating = %+v, want %+v", got, want)
	}
}

func TestTopCategoryByRating_TiesAreKept(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.Category = "X"; r.Rating = 9 }),
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.Category = "Y"; r.Rating = 9 }),
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.Category = "Z"; r.Rating = 5 }),
		sale(func(r *pipeline.Record) { r.Branch = "B"; r.Category = "X"; r.Rating = 7 }),
	}

	got := TopCategoryByRating(records)
	want := []BranchCategoryRatingRow{
		{Branch: "A", Category: "X", AvgRating: 9},
		{Branch: "A", Category: "Y", AvgRating: 9},
		{Branch: "B", Category: "X", AvgRating: 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopCategoryByRating = %+v, want %+v", got, want)
	}
}

func TestBusiestDay(t *testing.T) {
	monday := civil.Date{Year: 2023, Month: time.March, Day: 6}
	tuesday := civil.Date{Year: 2023, Month: time.March, Day: 7}
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.Date = monday }),
		sale(func(r *pipeline.Record) { r.Date = monday }),
		sale(func(r *pipeline.Record) { r.Date = tuesday }),
	}

	got := BusiestDay(records)
	want := []BranchDayVolumeRow{
		{Branch: "WALM003", DayName: "Monday", Transactions: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BusiestDay = %+v, want %+v", got, want)
	}
}

func TestItemsPerPaymentMethod(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.PaymentMethod = "Cash"; r.Quantity = 4 }),
		sale(func(r *pipeline.Record) { r.PaymentMethod = "Credit card"; r.Quantity = 1 }),
		sale(func(r *pipeline.Record) { r.PaymentMethod = "Cash"; r.Quantity = 6 }),
	}

	got := ItemsPerPaymentMethod(records)
	want := []PaymentMethodItemsRow{
		{PaymentMethod: "Cash", ItemsSold: 10},
		{PaymentMethod: "Credit card", ItemsSold: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ItemsPerPaymentMethod = %+v, want %+v", got, want)
	}
}

func TestRatingStatsByCity(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.City = "Dallas"; r.Category = "Food"; r.Rating = 6 }),
		sale(func(r *pipeline.Record) { r.City = "Dallas"; r.Category = "Food"; r.Rating = 10 }),
		sale(func(r *pipeline.Record) { r.City = "Dallas"; r.Category = "Food"; r.Rating = 8 }),
	}

	got := RatingStatsByCity(records)
	want := []CityCategoryRatingRow{
		{City: "Dallas", Category: "Food", MinRating: 6, MaxRating: 10, AvgRating: 8},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RatingStatsByCity = %+v, want %+v", got, want)
	}
}

func TestProfitByCategory(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.Category = "Food"; r.Total = 100; r.ProfitMargin = 0.5 }),
		sale(func(r *pipeline.Record) { r.Category = "Food"; r.Total = 100; r.ProfitMargin = 0.1 }),
		sale(func(r *pipeline.Record) { r.Category = "Sports"; r.Total = 400; r.ProfitMargin = 0.1 }),
	}

	got := ProfitByCategory(records)
	want := []CategoryProfitRow{
		{Category: "Food", Revenue: 200, Profit: 60},
		{Category: "Sports", Revenue: 400, Profit: 40},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProfitByCategory = %+v, want %+v", got, want)
	}
}

func TestTopPaymentMethodPerBranch_TiesAreKept(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.PaymentMethod = "Cash" }),
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.PaymentMethod = "Ewallet" }),
		sale(func(r *pipeline.Record) { r.Branch = "B"; r.PaymentMethod = "Cash" }),
		sale(func(r *pipeline.Record) { r.Branch = "B"; r.PaymentMethod = "Cash" }),
		sale(func(r *pipeline.Record) { r.Branch = "B"; r.PaymentMethod = "Ewallet" }),
	}

	got := TopPaymentMethodPerBranch(records)
	want := []BranchPaymentMethodRow{
		{Branch: "A", PaymentMethod: "Cash", Transactions: 1},
		{Branch: "A", PaymentMethod: "Ewallet", Transactions: 1},
		{Branch: "B", PaymentMethod: "Cash", Transactions: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopPaymentMethodPerBranch = %+v, want %+v", got, want)
	}
}

func TestShiftVolumePerBranch(t *testing.T) {
	records := []*pipeline.Record{
		sale(func(r *pipeline.Record) { r.Time = civil.Time{Hour: 9} }),
		sale(func(r *pipeline.Record) { r.Time = civil.Time{Hour: 10} }),
		sale(func(r *pipeline.Record) { r.Time = civil.Time{Hour: 13} }),
		sale(func(r *pipeline.Record) { r.Time = civil.Time{Hour: 20} }),
	}

	got := ShiftVolumePerBranch(records)
	want := []BranchShiftRow{
		{Branch: "WALM003", Shift: "Morning", Transactions: 2},
		{Branch: "WALM003", Shift: "Afternoon", Transactions: 1},
		{Branch: "WALM003", Shift: "Evening", Transactions: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ShiftVolumePerBranch = %+v, want %+v", got, want)
	}
}

func TestRevenueDecline(t *testing.T) {
	y2022 := civil.Date{Year: 2022, Month: time.June, Day: 1}
	y2023 := civil.Date{Year: 2023, Month: time.June, Day: 1}
	records := []*pipeline.Record{
		// Declining branch: 1000 -> 800.
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.Date = y2022; r.Total = 1000 }),
		sale(func(r *pipeline.Record) { r.Branch = "A"; r.Date = y2023; r.Total = 800 }),
		// Growing branch, excluded.
		sale(func(r *pipeline.Record) { r.Branch = "B"; r.Date = y2022; r.Total = 500 }),
		sale(func(r *pipeline.Record) { r.Branch = "B"; r.Date = y2023; r.Total = 600 }),
		// No 2023 revenue, excluded.
		sale(func(r *pipeline.Record) { r.Branch = "C"; r.Date = y2022; r.Total = 900 }),
	}

	got := RevenueDecline(records)
	want := []RevenueDeclineRow{
		{Branch: "A", Revenue2022: 1000, Revenue2023: 800, DeclineRatio: 20},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RevenueDecline = %+v, want %+v", got, want)
	}
}

func TestRevenueDecline_TopFiveOnly(t *testing.T) {
	y2022 := civil.Date{Year: 2022, Month: time.June, Day: 1}
	y2023 := civil.Date{Year: 2023, Month: time.June, Day: 1}

	// Six declining branches with strictly increasing decline ratios.
	branches := []string{"A", "B", "C", "D", "E", "F"}
	var records []*pipeline.Record
	for i, branch := range branches {
		b := branch
		curr := float64(900 - i*100)
		records = append(records,
			sale(func(r *pipeline.Record) { r.Branch = b; r.Date = y2022; r.Total = 1000 }),
			sale(func(r *pipeline.Record) { r.Branch = b; r.Date = y2023; r.Total = curr }),
		)
	}

	got := RevenueDecline(records)
	if len(got) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(got))
	}
	// Steepest decline first; the shallowest branch A falls off.
	if got[0].Branch != "F" || got[4].Branch != "B" {
		t.Errorf("Unexpected ordering: %+v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].DeclineRatio > got[i-1].DeclineRatio {
			t.Errorf("Rows not sorted by decline ratio: %+v", got)
		}
	}
}
