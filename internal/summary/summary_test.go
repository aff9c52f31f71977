package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyanalysis/internal/core"
)

func bal(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeekEnding(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2024-01-01", "2024-01-07"}, // Monday
		{"2024-01-07", "2024-01-07"}, // Sunday closes its own week
		{"2024-01-08", "2024-01-14"},
		{"2024-02-29", "2024-03-03"},
		{"2024-12-31", "2025-01-05"},
	}
	for _, tc := range cases {
		d, _ := time.Parse(WeekLayout, tc.in)
		assert.Equal(t, tc.want, WeekEnding(d).Format(WeekLayout), tc.in)
	}
}

func TestBuild(t *testing.T) {
	ds := &core.Dataset{Transactions: []core.Transaction{
		{Date: core.NewDate(2024, 1, 2), Type: core.TypeIncome, Category: core.CategoryFundTransfer, Balance: bal("100")},
		{Date: core.NewDate(2024, 1, 3), Type: core.TypeExpense, Category: core.CategoryBillPayment, Balance: bal("80")},
		{Date: core.NewDate(2024, 1, 5), Type: core.TypeExpense, Category: core.CategoryBillPayment, Balance: bal("60")},
		{Date: core.NewDate(2024, 1, 22), Type: core.TypeExpense, Category: core.CategoryMiscellaneous, Balance: bal("50")},
		{Type: core.TypeExpense, Category: core.CategoryMiscellaneous, Balance: bal("45")},
		{Date: core.NewDate(2024, 1, 23), Type: core.TypeUnknown, Category: core.CategoryMiscellaneous},
	}}
	before := append([]core.Transaction(nil), ds.Transactions...)

	s := Build(ds)

	require.Len(t, s.ByType, 3)
	assert.Equal(t, []string{"Expense", "Income", "Unknown"}, keys(s.ByType))
	exp := s.ByType[0]
	assert.Equal(t, 4, exp.Count)
	assert.True(t, exp.Sum.Equal(dec("235")))
	assert.True(t, exp.Mean.Equal(dec("58.75")))
	assert.True(t, exp.Median.Equal(dec("55")))

	unknown := s.ByType[2]
	assert.Equal(t, 0, unknown.Count)
	assert.True(t, unknown.Sum.IsZero())

	assert.Equal(t, []string{"Bill Payment", "Fund Transfer", "Miscellaneous"}, keys(s.ByCategory))

	// Weeks ending 7 Jan and 28 Jan only; the empty weeks between are omitted
	// and the undated row is excluded.
	require.Equal(t, []string{"2024-01-07", "2024-01-28"}, keys(s.Weekly))
	assert.Equal(t, 3, s.Weekly[0].Count)
	assert.True(t, s.Weekly[0].Median.Equal(dec("80")))
	assert.Equal(t, 1, s.Weekly[1].Count)

	assert.Equal(t, before, ds.Transactions)
}

func TestBuildEmpty(t *testing.T) {
	s := Build(&core.Dataset{})
	assert.Empty(t, s.ByType)
	assert.Empty(t, s.ByCategory)
	assert.Empty(t, s.Weekly)
}

func TestWeeklyIsChronologicalAcrossYears(t *testing.T) {
	txs := []core.Transaction{
		{Date: core.NewDate(2025, 1, 2), Balance: bal("1")},
		{Date: core.NewDate(2024, 12, 20), Balance: bal("2")},
	}
	assert.Equal(t, []string{"2024-12-22", "2025-01-05"}, keys(Weekly(txs)))
}

func keys(stats []core.GroupStat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Key
	}
	return out
}
