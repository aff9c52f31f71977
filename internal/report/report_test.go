package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"moneyanalysis/internal/core"
)

func nd(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func TestRate(t *testing.T) {
	cases := []struct {
		rate string
		want core.Rating
	}{
		{"50", core.RatingExcellent},
		{"20.01", core.RatingExcellent},
		{"20", core.RatingGood},
		{"10.5", core.RatingGood},
		{"10", core.RatingAverage},
		{"0.01", core.RatingAverage},
		{"0", core.RatingPoor},
		{"-35", core.RatingPoor},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Rate(decimal.RequireFromString(tc.rate)), tc.rate)
	}
}

func TestPeriod(t *testing.T) {
	txs := []core.Transaction{
		{Deposit: nd(50000)},
		{Withdrawal: nd(30000)},
		{Withdrawal: nd(5000)},
		{},
	}
	p := Period("JAN", txs)
	assert.True(t, p.Income.Equal(decimal.NewFromInt(50000)))
	assert.True(t, p.Expenses.Equal(decimal.NewFromInt(35000)))
	assert.True(t, p.Savings.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, "30.00", p.SavingsRate.StringFixed(2))
	assert.Equal(t, core.RatingExcellent, p.Rating)
	assert.Equal(t, 4, p.Transactions)
}

func TestPeriodWithoutIncome(t *testing.T) {
	p := Period("FEB", []core.Transaction{{Withdrawal: nd(10)}})
	assert.True(t, p.SavingsRate.IsZero())
	assert.Equal(t, core.RatingPoor, p.Rating)
	assert.Zero(t, p.Year)
}

func TestPeriodYearIsLatestDatedRow(t *testing.T) {
	p := Period(YearPeriod, []core.Transaction{
		{Date: core.NewDate(2023, 12, 30), Deposit: nd(10)},
		{Date: core.NewDate(2024, 1, 2), Withdrawal: nd(5)},
		{Withdrawal: nd(1)},
	})
	assert.Equal(t, 2024, p.Year)
}

func TestWriteMonthAndYear(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(dir, nil)
	ds := &core.Dataset{Month: "MAR", Transactions: []core.Transaction{
		{Deposit: nd(1000)},
		{Withdrawal: nd(950)},
	}}

	p, err := r.WriteMonth(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, core.RatingAverage, p.Rating)

	body, err := os.ReadFile(filepath.Join(dir, "reports", "MAR_report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Monthly Report for MAR\n"+
		"Total Income: ₹1,000.00\n"+
		"Total Expenses: ₹950.00\n"+
		"Savings: ₹50.00\n"+
		"Savings Rate: 5.00%\n"+
		"Rating: Average\n"+
		"Transactions: 2\n", string(body))

	_, err = r.WriteYear(context.Background(), ds)
	require.NoError(t, err)
	body, err = os.ReadFile(filepath.Join(dir, "reports", "yearly_report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "Yearly Report\n")
}

func TestInsights(t *testing.T) {
	ds := &core.Dataset{Transactions: []core.Transaction{
		{Date: core.NewDate(2024, 2, 3), Deposit: nd(1000), Category: core.CategoryFundTransfer},
		{Date: core.NewDate(2024, 1, 5), Deposit: nd(2000), Category: core.CategoryMiscellaneous},
		{Date: core.NewDate(2024, 1, 9), Withdrawal: nd(500), Category: core.CategoryBillPayment},
		{Date: core.NewDate(2024, 2, 10), Withdrawal: nd(1500), Category: core.CategoryBillPayment},
		{Date: core.NewDate(2024, 3, 1), Withdrawal: nd(100), Category: core.CategoryInvestment},
		{Withdrawal: nd(999), Category: core.CategoryLoanPayment},
	}}

	in := Insights(ds)

	require.Len(t, in.Months, 3)
	assert.Equal(t, 1, in.Months[0].Month)
	assert.Equal(t, "75.00", in.Months[0].SavingsRate.Decimal.StringFixed(2))
	assert.Equal(t, "-50.00", in.Months[1].SavingsRate.Decimal.StringFixed(2))
	assert.False(t, in.Months[2].SavingsRate.Valid)
	assert.Equal(t, "12.50", in.MeanSavingsRate.StringFixed(2))
	assert.True(t, in.TotalIncome.Equal(decimal.NewFromInt(3000)))
	assert.True(t, in.TotalExpenses.Equal(decimal.NewFromInt(2100)))

	// Undated rows never reach the trends, so Loan Payment is absent.
	var cats []core.TransactionCategory
	for _, s := range in.Spending {
		cats = append(cats, s.Category)
	}
	assert.Equal(t, []core.TransactionCategory{core.CategoryBillPayment, core.CategoryFundTransfer, core.CategoryInvestment, core.CategoryMiscellaneous}, cats)
	assert.True(t, in.Spending[0].Amount.Equal(decimal.NewFromInt(2000)))

	require.Len(t, in.Trends, 3)
	assert.Len(t, in.Trends[0].ByCategory, 4)
	assert.True(t, in.Trends[2].ByCategory[2].Amount.Equal(decimal.NewFromInt(100)))
}

func TestWriteInsights(t *testing.T) {
	dir := t.TempDir()
	ds := &core.Dataset{Month: "ALL", Transactions: []core.Transaction{
		{Date: core.NewDate(2024, 1, 5), Deposit: nd(2000), Category: core.CategoryMiscellaneous},
		{Date: core.NewDate(2024, 1, 9), Withdrawal: nd(500), Category: core.CategoryBillPayment},
	}}
	_, err := NewReporter(dir, nil).WriteInsights(context.Background(), ds)
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(dir, "reports", "insights_summary.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	summary, err := f.GetRows(SheetInsights)
	require.NoError(t, err)
	assert.Equal(t, []string{"Month", "Total Income", "Total Expenses", "Savings Rate"}, summary[0])

	rows, err := f.GetRows(SheetTrends)
	require.NoError(t, err)
	assert.Equal(t, []string{"Month", "Bill Payment", "Miscellaneous"}, rows[0])
	assert.Equal(t, "2024-01", rows[1][0])

	body, err := os.ReadFile(filepath.Join(dir, "reports", "insights_summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "Savings Rate: 75.00%")
	assert.Contains(t, string(body), "  Bill Payment: ₹500.00")
}
