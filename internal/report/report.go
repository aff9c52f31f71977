// Package report writes the plain-text month and year reports and the
// multi-month insights summary.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"moneyanalysis/internal/cashflow"
	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"
)

// DirName is the reports folder created under an output directory.
const DirName = "reports"

// YearPeriod labels the yearly report.
const YearPeriod = "YEAR"

var (
	hundred        = decimal.NewFromInt(100)
	excellentAbove = decimal.NewFromInt(20)
	goodAbove      = decimal.NewFromInt(10)
)

// Reporter writes text reports below <outputDir>/reports.
type Reporter struct {
	outputDir string
	logger    *log.Logger
}

func NewReporter(outputDir string, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Reporter{outputDir: outputDir, logger: logger.WithComponent(log.ComponentReport)}
}

// Dir returns the reports directory.
func (r *Reporter) Dir() string {
	return filepath.Join(r.outputDir, DirName)
}

// Period computes income, expenses, savings and the savings rating over txs.
func Period(period string, txs []core.Transaction) core.PeriodReport {
	income, expenses := cashflow.Totals(txs)
	savings := income.Sub(expenses)
	rate := SavingsRate(income, expenses)
	return core.PeriodReport{
		Period:       period,
		Income:       income,
		Expenses:     expenses,
		Savings:      savings,
		SavingsRate:  rate,
		Rating:       Rate(rate),
		Transactions: len(txs),
		Year:         latestYear(txs),
	}
}

func latestYear(txs []core.Transaction) int {
	year := 0
	for _, tx := range txs {
		if !tx.Date.IsEmpty() && tx.Date.Year() > year {
			year = tx.Date.Year()
		}
	}
	return year
}

// SavingsRate returns (income-expenses)/income as a percentage, or zero when
// there was no income.
func SavingsRate(income, expenses decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return income.Sub(expenses).Div(income).Mul(hundred)
}

// Rate bands a savings rate percentage.
func Rate(rate decimal.Decimal) core.Rating {
	switch {
	case rate.GreaterThan(excellentAbove):
		return core.RatingExcellent
	case rate.GreaterThan(goodAbove):
		return core.RatingGood
	case rate.IsPositive():
		return core.RatingAverage
	default:
		return core.RatingPoor
	}
}

// Render formats a period report as text.
func Render(title string, p core.PeriodReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Total Income: %s\n", core.FormatINR(p.Income))
	fmt.Fprintf(&b, "Total Expenses: %s\n", core.FormatINR(p.Expenses))
	fmt.Fprintf(&b, "Savings: %s\n", core.FormatINR(p.Savings))
	fmt.Fprintf(&b, "Savings Rate: %s%%\n", p.SavingsRate.StringFixed(2))
	fmt.Fprintf(&b, "Rating: %s\n", p.Rating)
	fmt.Fprintf(&b, "Transactions: %d\n", p.Transactions)
	return b.String()
}

// WriteMonth writes <reports>/<MONTH>_report.txt.
func (r *Reporter) WriteMonth(ctx context.Context, ds *core.Dataset) (core.PeriodReport, error) {
	p := Period(ds.Month, ds.Transactions)
	path := filepath.Join(r.Dir(), ds.Month+"_report.txt")
	if err := writeText(path, Render("Monthly Report for "+ds.Month, p)); err != nil {
		return p, &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	r.logger.DebugContext(ctx, "Monthly report written", log.FieldMonth, ds.Month, log.FieldPath, path)
	return p, nil
}

// WriteYear writes <reports>/yearly_report.txt over the combined dataset.
func (r *Reporter) WriteYear(ctx context.Context, ds *core.Dataset) (core.PeriodReport, error) {
	p := Period(YearPeriod, ds.Transactions)
	path := filepath.Join(r.Dir(), "yearly_report.txt")
	if err := writeText(path, Render("Yearly Report", p)); err != nil {
		return p, &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	r.logger.DebugContext(ctx, "Yearly report written", log.FieldPath, path)
	return p, nil
}

func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
