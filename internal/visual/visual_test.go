package visual

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"moneyanalysis/internal/core"
)

func nd(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func dataset() *core.Dataset {
	return &core.Dataset{
		Month:   "JAN",
		Header:  []string{"Transaction Date", "Transaction Remarks", "Withdrawal Amount (INR )", "Deposit Amount (INR )", "Balance (INR )"},
		Columns: core.ColumnMap{Date: 0, Remarks: 1, Withdrawal: 2, Deposit: 3, Balance: 4},
		Transactions: []core.Transaction{
			{Date: core.NewDate(2024, 2, 1), Deposit: nd(250000), Balance: nd(250000), Category: core.CategoryFundTransfer},
			{Date: core.NewDate(2024, 1, 15), Withdrawal: nd(100000), Balance: nd(150000), Category: core.CategoryBillPayment},
			{Date: core.NewDate(2024, 1, 20), Withdrawal: nd(100001), Balance: nd(49999), Category: core.CategoryBillPayment},
			{Withdrawal: nd(10), Category: core.CategoryMiscellaneous},
		},
	}
}

func TestMonthlyTotals(t *testing.T) {
	totals := MonthlyTotals(dataset())
	require.Len(t, totals, 2)
	assert.Equal(t, "2024-01", totals[0].Label)
	assert.True(t, totals[0].Expenses.Equal(decimal.NewFromInt(200001)))
	assert.Equal(t, "2024-02", totals[1].Label)
	assert.True(t, totals[1].Income.Equal(decimal.NewFromInt(250000)))
}

func TestCategoryCounts(t *testing.T) {
	counts := CategoryCounts(dataset())
	assert.Equal(t, []CategoryCount{
		{core.CategoryBillPayment, 2},
		{core.CategoryFundTransfer, 1},
		{core.CategoryMiscellaneous, 1},
	}, counts)
}

func TestLargeTransactionsIsStrict(t *testing.T) {
	large := LargeTransactions(dataset(), DefaultLargeThreshold)
	require.Equal(t, 2, large.Len())
	assert.True(t, large.Transactions[0].Deposit.Decimal.Equal(decimal.NewFromInt(250000)))
	assert.True(t, large.Transactions[1].Withdrawal.Decimal.Equal(decimal.NewFromInt(100001)))
}

func TestRender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "JAN", "reports")
	v := New(decimal.Zero, nil)
	require.NoError(t, v.Render(context.Background(), dir, dataset()))

	charts, err := excelize.OpenFile(filepath.Join(dir, ChartsFile))
	require.NoError(t, err)
	defer charts.Close()
	assert.Equal(t, []string{SheetCharts, SheetMonthly, SheetCategories, SheetBalance}, charts.GetSheetList())
	balance, err := charts.GetRows(SheetBalance)
	require.NoError(t, err)
	assert.Len(t, balance, 4) // header plus the three dated rows

	large, err := excelize.OpenFile(filepath.Join(dir, LargeFile))
	require.NoError(t, err)
	defer large.Close()
	rows, err := large.GetRows(SheetLarge)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRenderEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	ds := &core.Dataset{Month: "FEB", Header: []string{"Transaction Date"}}
	require.NoError(t, New(DefaultLargeThreshold, nil).Render(context.Background(), dir, ds))
}

func TestRef(t *testing.T) {
	assert.Equal(t, "'Monthly Summary'!$B$1", ref(SheetMonthly, "B", 1, 1))
	assert.Equal(t, "'Balance'!$A$2:$A$9", ref(SheetBalance, "A", 2, 9))
}
