package core

import (
	"github.com/shopspring/decimal"
)

// GroupStat aggregates the balance column for one grouping key.
type GroupStat struct {
	Key    string
	Count  int
	Sum    decimal.Decimal
	Mean   decimal.Decimal
	Median decimal.Decimal
}

// Summaries holds the three grouped tables built for a month.
type Summaries struct {
	ByType     []GroupStat
	ByCategory []GroupStat
	Weekly     []GroupStat
}

// Rating bands a savings rate.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingAverage   Rating = "Average"
	RatingPoor      Rating = "Poor"
)

// PeriodReport is the income/expense overview of a month or a year.
type PeriodReport struct {
	Period       string
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	Savings      decimal.Decimal
	SavingsRate  decimal.Decimal // percent
	Rating       Rating
	Transactions int
	Year         int // year of the latest dated row, 0 when none is dated
}

// MonthOverview is one calendar month inside the insights summary.
type MonthOverview struct {
	Year        int
	Month       int // 1-12
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	SavingsRate decimal.NullDecimal // null when there was no income
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category TransactionCategory
	Amount   decimal.Decimal
}

// CategoryTrend is the withdrawal total per category for one calendar month.
type CategoryTrend struct {
	Year       int
	Month      int
	ByCategory []CategoryAmount
}

// Insights is the multi-month view extracted from an enriched dataset.
type Insights struct {
	Months          []MonthOverview
	Trends          []CategoryTrend
	TotalIncome     decimal.Decimal
	TotalExpenses   decimal.Decimal
	MeanSavingsRate decimal.Decimal
	Spending        []CategoryAmount
}
