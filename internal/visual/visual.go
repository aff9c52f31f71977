// Package visual renders chart and large-transaction workbooks for a month
// or for the whole run.
package visual

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"
	"moneyanalysis/internal/sheets/excel"
)

// File and sheet names.
const (
	ChartsFile = "charts.xlsx"
	LargeFile  = "large_transactions_report.xlsx"

	SheetCharts     = "Charts"
	SheetMonthly    = "Monthly Summary"
	SheetCategories = "Category Breakdown"
	SheetBalance    = "Balance"
	SheetLarge      = "Large Transactions"
)

// DefaultLargeThreshold flags deposits or withdrawals above one lakh.
var DefaultLargeThreshold = decimal.NewFromInt(100000)

// MonthTotal is income and expenses of one calendar month.
type MonthTotal struct {
	Label    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// CategoryCount is the number of transactions in a category.
type CategoryCount struct {
	Category core.TransactionCategory
	Count    int
}

// Visualizer writes charts.xlsx and large_transactions_report.xlsx.
type Visualizer struct {
	threshold decimal.Decimal
	logger    *log.Logger
}

func New(threshold decimal.Decimal, logger *log.Logger) *Visualizer {
	if !threshold.IsPositive() {
		threshold = DefaultLargeThreshold
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Visualizer{threshold: threshold, logger: logger.WithComponent(log.ComponentVisual)}
}

// Render writes both workbooks into dir.
func (v *Visualizer) Render(ctx context.Context, dir string, ds *core.Dataset) error {
	chartsPath := filepath.Join(dir, ChartsFile)
	if err := writeCharts(chartsPath, ds); err != nil {
		return &core.WriteError{Month: ds.Month, Path: chartsPath, Err: err}
	}
	largePath := filepath.Join(dir, LargeFile)
	large := LargeTransactions(ds, v.threshold)
	if err := writeLarge(largePath, large); err != nil {
		return &core.WriteError{Month: ds.Month, Path: largePath, Err: err}
	}
	v.logger.DebugContext(ctx, "Visuals written", log.FieldMonth, ds.Month, "dir", dir, "large", large.Len())
	return nil
}

// MonthlyTotals sums deposits and withdrawals per calendar month in
// chronological order. Undated rows are left out.
func MonthlyTotals(ds *core.Dataset) []MonthTotal {
	type key struct{ y, m int }
	sums := map[key]*MonthTotal{}
	var keys []key
	for _, tx := range ds.Transactions {
		if tx.Date.IsEmpty() {
			continue
		}
		k := key{tx.Date.Year(), int(tx.Date.Month())}
		t, ok := sums[k]
		if !ok {
			t = &MonthTotal{Label: fmt.Sprintf("%04d-%02d", k.y, k.m), Income: decimal.Zero, Expenses: decimal.Zero}
			sums[k] = t
			keys = append(keys, k)
		}
		t.Income = t.Income.Add(tx.DepositOrZero())
		t.Expenses = t.Expenses.Add(tx.WithdrawalOrZero())
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].y != keys[j].y {
			return keys[i].y < keys[j].y
		}
		return keys[i].m < keys[j].m
	})
	out := make([]MonthTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *sums[k])
	}
	return out
}

// CategoryCounts counts transactions per category, most frequent first.
func CategoryCounts(ds *core.Dataset) []CategoryCount {
	counts := map[core.TransactionCategory]int{}
	for _, tx := range ds.Transactions {
		counts[tx.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// LargeTransactions keeps rows whose deposit or withdrawal exceeds threshold.
func LargeTransactions(ds *core.Dataset, threshold decimal.Decimal) *core.Dataset {
	out := &core.Dataset{Month: ds.Month, Source: ds.Source, Header: ds.Header, Columns: ds.Columns}
	for _, tx := range ds.Transactions {
		if tx.DepositOrZero().GreaterThan(threshold) || tx.WithdrawalOrZero().GreaterThan(threshold) {
			out.Transactions = append(out.Transactions, tx)
		}
	}
	return out
}

func writeLarge(path string, ds *core.Dataset) error {
	f, err := excel.NewWorkbook(SheetLarge)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := excel.WriteTable(f, SheetLarge, excel.DetailedHeader(ds), excel.DetailedRows(ds)); err != nil {
		return err
	}
	return excel.Save(f, path)
}

func writeCharts(path string, ds *core.Dataset) error {
	f, err := excel.NewWorkbook(SheetCharts, SheetMonthly, SheetCategories, SheetBalance)
	if err != nil {
		return err
	}
	defer f.Close()

	totals := MonthlyTotals(ds)
	rows := make([][]any, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []any{t.Label, excel.Number(t.Income), excel.Number(t.Expenses)})
	}
	if err := excel.WriteTable(f, SheetMonthly, []string{"Month", "Total Income", "Total Expenses"}, rows); err != nil {
		return err
	}

	counts := CategoryCounts(ds)
	rows = make([][]any, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []any{c.Category.String(), c.Count})
	}
	if err := excel.WriteTable(f, SheetCategories, []string{"Transaction Category", "Count"}, rows); err != nil {
		return err
	}

	rows = make([][]any, 0, ds.Len())
	for _, tx := range ds.Transactions {
		if tx.Date.IsEmpty() || !tx.Balance.Valid {
			continue
		}
		rows = append(rows, []any{tx.Date.String(), excel.Number(tx.Balance.Decimal)})
	}
	balanceRows := len(rows)
	if err := excel.WriteTable(f, SheetBalance, []string{"Transaction Date", "Balance (INR )"}, rows); err != nil {
		return err
	}

	for _, c := range chartSpecs(len(totals), len(counts), balanceRows) {
		if err := f.AddChart(SheetCharts, c.cell, c.chart); err != nil {
			return fmt.Errorf("add chart %q: %w", c.title, err)
		}
	}
	return excel.Save(f, path)
}

type placedChart struct {
	title string
	cell  string
	chart *excelize.Chart
}

// chartSpecs lays out the four charts on the Charts sheet. A chart whose
// data table is empty is not drawn.
func chartSpecs(months, categories, balances int) []placedChart {
	var out []placedChart
	if months > 0 {
		out = append(out,
			placedChart{"Total Income vs. Total Expenses", "A1", &excelize.Chart{
				Type:   excelize.ColStacked,
				Title:  title("Total Income vs. Total Expenses"),
				Series: incomeExpenseSeries(months),
				XAxis:  excelize.ChartAxis{Title: title("Month")},
				YAxis:  excelize.ChartAxis{Title: title("Amount (INR)")},
			}},
			placedChart{"Income vs. Expense Trend", "J1", &excelize.Chart{
				Type:   excelize.Line,
				Title:  title("Income vs. Expense Trend"),
				Series: incomeExpenseSeries(months),
				XAxis:  excelize.ChartAxis{Title: title("Month")},
				YAxis:  excelize.ChartAxis{Title: title("Amount (INR)")},
			}},
		)
	}
	if categories > 0 {
		out = append(out, placedChart{"Category Breakdown", "A17", &excelize.Chart{
			Type:  excelize.Pie,
			Title: title("Category Breakdown"),
			Series: []excelize.ChartSeries{{
				Name:       ref(SheetCategories, "B", 1, 1),
				Categories: ref(SheetCategories, "A", 2, categories+1),
				Values:     ref(SheetCategories, "B", 2, categories+1),
			}},
			PlotArea: excelize.ChartPlotArea{ShowPercent: true},
		}})
	}
	if balances > 0 {
		out = append(out, placedChart{"Cumulative Balance Over Time", "J17", &excelize.Chart{
			Type:  excelize.Line,
			Title: title("Cumulative Balance Over Time"),
			Series: []excelize.ChartSeries{{
				Name:       ref(SheetBalance, "B", 1, 1),
				Categories: ref(SheetBalance, "A", 2, balances+1),
				Values:     ref(SheetBalance, "B", 2, balances+1),
			}},
			XAxis: excelize.ChartAxis{Title: title("Date")},
			YAxis: excelize.ChartAxis{Title: title("Balance (INR)")},
		}})
	}
	return out
}

func incomeExpenseSeries(months int) []excelize.ChartSeries {
	return []excelize.ChartSeries{
		{
			Name:       ref(SheetMonthly, "B", 1, 1),
			Categories: ref(SheetMonthly, "A", 2, months+1),
			Values:     ref(SheetMonthly, "B", 2, months+1),
		},
		{
			Name:       ref(SheetMonthly, "C", 1, 1),
			Categories: ref(SheetMonthly, "A", 2, months+1),
			Values:     ref(SheetMonthly, "C", 2, months+1),
		},
	}
}

func title(s string) []excelize.RichTextRun {
	return []excelize.RichTextRun{{Text: s}}
}

// ref builds an absolute range such as 'Monthly Summary'!$B$2:$B$5.
func ref(sheet, col string, from, to int) string {
	if from == to {
		return fmt.Sprintf("'%s'!$%s$%d", sheet, col, from)
	}
	return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, col, from, col, to)
}
