package report

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"
	"moneyanalysis/internal/sheets/excel"
)

// Sheet names of the insights workbook.
const (
	SheetInsights = "Insights Summary"
	SheetTrends   = "Category Trends"
)

type monthKey struct{ year, month int }

func (k monthKey) String() string { return fmt.Sprintf("%04d-%02d", k.year, k.month) }

// Insights groups a dataset by calendar month. Rows without a date are left
// out. A month without income has a null savings rate and is ignored by the
// mean.
func Insights(ds *core.Dataset) core.Insights {
	type bucket struct {
		income, expenses decimal.Decimal
		byCategory       map[core.TransactionCategory]decimal.Decimal
	}
	buckets := map[monthKey]*bucket{}
	seen := map[core.TransactionCategory]struct{}{}
	for _, tx := range ds.Transactions {
		if tx.Date.IsEmpty() {
			continue
		}
		k := monthKey{tx.Date.Year(), int(tx.Date.Month())}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{income: decimal.Zero, expenses: decimal.Zero, byCategory: map[core.TransactionCategory]decimal.Decimal{}}
			buckets[k] = b
		}
		b.income = b.income.Add(tx.DepositOrZero())
		b.expenses = b.expenses.Add(tx.WithdrawalOrZero())
		b.byCategory[tx.Category] = b.byCategory[tx.Category].Add(tx.WithdrawalOrZero())
		seen[tx.Category] = struct{}{}
	}

	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	categories := make([]core.TransactionCategory, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	out := core.Insights{TotalIncome: decimal.Zero, TotalExpenses: decimal.Zero, MeanSavingsRate: decimal.Zero}
	spending := map[core.TransactionCategory]decimal.Decimal{}
	rateSum, rates := decimal.Zero, 0
	for _, k := range keys {
		b := buckets[k]
		ov := core.MonthOverview{Year: k.year, Month: k.month, Income: b.income, Expenses: b.expenses}
		if !b.income.IsZero() {
			ov.SavingsRate = decimal.NewNullDecimal(b.income.Sub(b.expenses).Div(b.income).Mul(hundred))
			rateSum = rateSum.Add(ov.SavingsRate.Decimal)
			rates++
		}
		out.Months = append(out.Months, ov)
		out.TotalIncome = out.TotalIncome.Add(b.income)
		out.TotalExpenses = out.TotalExpenses.Add(b.expenses)

		trend := core.CategoryTrend{Year: k.year, Month: k.month}
		for _, c := range categories {
			amt := b.byCategory[c]
			trend.ByCategory = append(trend.ByCategory, core.CategoryAmount{Category: c, Amount: amt})
			spending[c] = spending[c].Add(amt)
		}
		out.Trends = append(out.Trends, trend)
	}
	if rates > 0 {
		out.MeanSavingsRate = rateSum.Div(decimal.NewFromInt(int64(rates)))
	}
	for _, c := range categories {
		out.Spending = append(out.Spending, core.CategoryAmount{Category: c, Amount: spending[c]})
	}
	return out
}

// RenderInsights formats the insights summary as text.
func RenderInsights(in core.Insights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Income: %s\n", core.FormatINR(in.TotalIncome))
	fmt.Fprintf(&b, "Total Expenses: %s\n", core.FormatINR(in.TotalExpenses))
	fmt.Fprintf(&b, "Savings Rate: %s%%\n", in.MeanSavingsRate.StringFixed(2))
	b.WriteString("Major Spending Categories:\n")
	for _, s := range in.Spending {
		fmt.Fprintf(&b, "  %s: %s\n", s.Category, core.FormatINR(s.Amount))
	}
	return b.String()
}

// WriteInsights writes insights_summary.xlsx and insights_summary.txt to the
// reports directory.
func (r *Reporter) WriteInsights(ctx context.Context, ds *core.Dataset) (core.Insights, error) {
	in := Insights(ds)

	xlsxPath := filepath.Join(r.Dir(), "insights_summary.xlsx")
	if err := writeInsightsWorkbook(xlsxPath, in); err != nil {
		return in, &core.WriteError{Month: ds.Month, Path: xlsxPath, Err: err}
	}
	txtPath := filepath.Join(r.Dir(), "insights_summary.txt")
	if err := writeText(txtPath, RenderInsights(in)); err != nil {
		return in, &core.WriteError{Month: ds.Month, Path: txtPath, Err: err}
	}
	r.logger.DebugContext(ctx, "Insights written", log.FieldPath, xlsxPath, "months", len(in.Months))
	return in, nil
}

func writeInsightsWorkbook(path string, in core.Insights) error {
	f, err := excel.NewWorkbook(SheetInsights, SheetTrends)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := make([][]any, 0, len(in.Months))
	for _, m := range in.Months {
		rows = append(rows, []any{
			monthKey{m.Year, m.Month}.String(),
			excel.Number(m.Income),
			excel.Number(m.Expenses),
			excel.NullNumber(m.SavingsRate),
		})
	}
	header := []string{"Month", "Total Income", "Total Expenses", "Savings Rate"}
	if err := excel.WriteTable(f, SheetInsights, header, rows); err != nil {
		return err
	}

	trendHeader := []string{"Month"}
	for _, s := range in.Spending {
		trendHeader = append(trendHeader, s.Category.String())
	}
	trendRows := make([][]any, 0, len(in.Trends))
	for _, t := range in.Trends {
		row := []any{monthKey{t.Year, t.Month}.String()}
		for _, c := range t.ByCategory {
			row = append(row, excel.Number(c.Amount))
		}
		trendRows = append(trendRows, row)
	}
	if err := excel.WriteTable(f, SheetTrends, trendHeader, trendRows); err != nil {
		return err
	}
	return excel.Save(f, path)
}
