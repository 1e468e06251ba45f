// Package analytics holds the fixed catalogue of nine business reports
// computed over the loaded sales table. Each report exists twice: as
// warehouse SQL (rendered by Report.SQL) and as an in-memory evaluation
// over cleaned records (local.go). Both produce the same row shapes.
package analytics

import (
	"fmt"
	"strings"
)

// Report is one named, parameterless analytical question.
type Report struct {
	Name     string
	Question string

	// sqlTemplate references the sales table as {{table}}.
	sqlTemplate string
}

// SQL renders the report's query against a fully-qualified table.
func (r Report) SQL(projectID, datasetID, table string) string {
	qualified := fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, table)
	return strings.ReplaceAll(r.sqlTemplate, "{{table}}", qualified)
}

// Catalogue returns all nine reports in their canonical order.
func Catalogue() []Report {
	return []Report{
		paymentMethodVolume,
		topCategoryByRating,
		busiestDayPerBranch,
		itemsPerPaymentMethod,
		ratingStatsByCity,
		profitByCategory,
		topPaymentMethodPerBranch,
		shiftVolumePerBranch,
		revenueDecline,
	}
}

// ReportByName looks a report up by its stable name.
func ReportByName(name string) (Report, bool) {
	for _, r := range Catalogue() {
		if r.Name == name {
			return r, true
		}
	}
	return Report{}, false
}

var paymentMethodVolume = Report{
	Name:     "payment_method_volume",
	Question: "How many transactions and items sold per payment method?",
	sqlTemplate: `
		SELECT
			payment_method,
			COUNT(*) AS transactions,
			SUM(quantity) AS items_sold
		FROM {{table}}
		GROUP BY payment_method
		ORDER BY transactions DESC
	`,
}

var topCategoryByRating = Report{
	Name:     "top_category_by_rating",
	Question: "Which category is rated highest in each branch?",
	sqlTemplate: `
		SELECT branch, category, avg_rating
		FROM (
			SELECT
				branch,
				category,
				AVG(rating) AS avg_rating,
				RANK() OVER (PARTITION BY branch ORDER BY AVG(rating) DESC) AS rnk
			FROM {{table}}
			GROUP BY branch, category
		)
		WHERE rnk = 1
		ORDER BY branch, avg_rating DESC, category
	`,
}

var busiestDayPerBranch = Report{
	Name:     "busiest_day",
	Question: "Which day of the week is busiest for each branch?",
	sqlTemplate: `
		SELECT branch, day_name, transactions
		FROM (
			SELECT
				branch,
				FORMAT_DATE('%A', sale_date) AS day_name,
				COUNT(*) AS transactions,
				RANK() OVER (PARTITION BY branch ORDER BY COUNT(*) DESC) AS rnk
			FROM {{table}}
			GROUP BY branch, day_name
		)
		WHERE rnk = 1
		ORDER BY branch, transactions DESC, day_name
	`,
}

var itemsPerPaymentMethod = Report{
	Name:     "items_per_payment_method",
	Question: "How many items were sold per payment method?",
	sqlTemplate: `
		SELECT
			payment_method,
			SUM(quantity) AS items_sold
		FROM {{table}}
		GROUP BY payment_method
		ORDER BY payment_method
	`,
}

var ratingStatsByCity = Report{
	Name:     "rating_stats_by_city",
	Question: "What are the min/max/avg ratings per category in each city?",
	sqlTemplate: `
		SELECT
			city,
			category,
			MIN(rating) AS min_rating,
			MAX(rating) AS max_rating,
			AVG(rating) AS avg_rating
		FROM {{table}}
		GROUP BY city, category
		ORDER BY city, category
	`,
}

var profitByCategory = Report{
	Name:     "profit_by_category",
	Question: "How much revenue and profit does each category generate?",
	sqlTemplate: `
		SELECT
			category,
			CAST(SUM(total) AS FLOAT64) AS revenue,
			CAST(SUM(total * profit_margin) AS FLOAT64) AS profit
		FROM {{table}}
		GROUP BY category
		ORDER BY profit DESC
	`,
}

var topPaymentMethodPerBranch = Report{
	Name:     "top_payment_method_per_branch",
	Question: "Which payment method is used most in each branch?",
	sqlTemplate: `
		SELECT branch, payment_method, transactions
		FROM (
			SELECT
				branch,
				payment_method,
				COUNT(*) AS transactions,
				RANK() OVER (PARTITION BY branch ORDER BY COUNT(*) DESC) AS rnk
			FROM {{table}}
			GROUP BY branch, payment_method
		)
		WHERE rnk = 1
		ORDER BY branch, transactions DESC, payment_method
	`,
}

var shiftVolumePerBranch = Report{
	Name:     "shift_volume",
	Question: "How many transactions happen per shift in each branch?",
	sqlTemplate: `
		SELECT
			branch,
			CASE
				WHEN EXTRACT(HOUR FROM sale_time) < 12 THEN 'Morning'
				WHEN EXTRACT(HOUR FROM sale_time) <= 17 THEN 'Afternoon'
				ELSE 'Evening'
			END AS shift,
			COUNT(*) AS transactions
		FROM {{table}}
		GROUP BY branch, shift
		ORDER BY branch, transactions DESC
	`,
}

var revenueDecline = Report{
	Name:     "revenue_decline",
	Question: "Which five branches declined most in revenue from 2022 to 2023?",
	sqlTemplate: `
		WITH revenue_2022 AS (
			SELECT branch, SUM(total) AS revenue
			FROM {{table}}
			WHERE EXTRACT(YEAR FROM sale_date) = 2022
			GROUP BY branch
		),
		revenue_2023 AS (
			SELECT branch, SUM(total) AS revenue
			FROM {{table}}
			WHERE EXTRACT(YEAR FROM sale_date) = 2023
			GROUP BY branch
		)
		SELECT
			r22.branch,
			CAST(r22.revenue AS FLOAT64) AS revenue_2022,
			CAST(r23.revenue AS FLOAT64) AS revenue_2023,
			ROUND(CAST((r22.revenue - r23.revenue) / r22.revenue * 100 AS FLOAT64), 2) AS decline_ratio
		FROM revenue_2022 r22
		JOIN revenue_2023 r23 ON r22.branch = r23.branch
		WHERE r22.revenue > r23.revenue
		ORDER BY decline_ratio DESC
		LIMIT 5
	`,
}
