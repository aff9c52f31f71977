package google

import (
	"fmt"
	"strings"
	"time"

	"moneyanalysis/internal/core"
)

const lastColumn = "H"

var reportHeader = []string{"Period", "Income", "Expenses", "Savings", "Savings Rate", "Rating", "Transactions", "Updated At"}

func headerRow() []interface{} {
	out := make([]interface{}, len(reportHeader))
	for i, h := range reportHeader {
		out[i] = h
	}
	return out
}

func reportRow(p core.PeriodReport, at time.Time) []interface{} {
	return []interface{}{
		p.Period,
		p.Income.StringFixed(2),
		p.Expenses.StringFixed(2),
		p.Savings.StringFixed(2),
		p.SavingsRate.StringFixed(2),
		string(p.Rating),
		p.Transactions,
		at.Format(time.RFC3339),
	}
}

// findPeriodRow returns the 1-based sheet row holding period in column A,
// or 0. The header row never matches.
func findPeriodRow(values [][]interface{}, period string) int {
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(fmt.Sprint(row[0])), period) {
			return i + 1
		}
	}
	return 0
}
