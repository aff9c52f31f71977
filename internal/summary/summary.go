// Package summary builds the grouped balance statistics written next to the
// detailed transactions of each month.
package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"moneyanalysis/internal/core"
)

// WeekLayout formats the label of a weekly bucket (the Sunday ending it).
const WeekLayout = "2006-01-02"

// Build groups the balance column by type, by category and by week. The
// dataset is only read.
func Build(ds *core.Dataset) core.Summaries {
	return core.Summaries{
		ByType:     ByKey(ds.Transactions, func(tx core.Transaction) (string, bool) { return tx.Type.String(), true }),
		ByCategory: ByKey(ds.Transactions, func(tx core.Transaction) (string, bool) { return tx.Category.String(), true }),
		Weekly:     Weekly(ds.Transactions),
	}
}

// ByKey groups txs by the key returned from keyOf, skipping rows for which
// it returns false. Groups are sorted by key.
func ByKey(txs []core.Transaction, keyOf func(core.Transaction) (string, bool)) []core.GroupStat {
	groups := map[string][]decimal.NullDecimal{}
	for _, tx := range txs {
		k, ok := keyOf(tx)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], tx.Balance)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]core.GroupStat, 0, len(keys))
	for _, k := range keys {
		out = append(out, Stat(k, groups[k]))
	}
	return out
}

// Weekly buckets txs into Monday to Sunday weeks labelled by their Sunday.
// Rows without a date are left out and weeks without rows do not appear.
func Weekly(txs []core.Transaction) []core.GroupStat {
	// ISO date labels sort chronologically.
	return ByKey(txs, func(tx core.Transaction) (string, bool) {
		if tx.Date.IsEmpty() {
			return "", false
		}
		return WeekEnding(tx.Date.Time).Format(WeekLayout), true
	})
}

// WeekEnding returns the Sunday closing the week that contains t.
func WeekEnding(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (7 - int(day.Weekday())) % 7
	return day.AddDate(0, 0, offset)
}

// Stat computes count, sum, mean and median over the non-null values.
func Stat(key string, values []decimal.NullDecimal) core.GroupStat {
	present := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		if v.Valid {
			present = append(present, v.Decimal)
		}
	}
	st := core.GroupStat{Key: key, Count: len(present), Sum: decimal.Zero, Mean: decimal.Zero, Median: decimal.Zero}
	if len(present) == 0 {
		return st
	}
	st.Sum = decimal.Sum(present[0], present[1:]...)
	st.Mean = st.Sum.Div(decimal.NewFromInt(int64(len(present))))
	st.Median = median(present)
	return st
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}
