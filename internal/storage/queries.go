package storage

import (
	"context"
	"database/sql"
	"time"
)

type Run struct {
	ID               string
	GeneratedAt      time.Time
	Months           string
	TransactionCount int64
}

type Transaction struct {
	ID                  int64
	RunID               string
	Month               string
	RowNumber           int64
	TransactionDate     sql.NullString
	Remarks             string
	Deposit             sql.NullString
	Withdrawal          sql.NullString
	Balance             sql.NullString
	TransactionType     string
	TransactionCategory string
	Insight             string
	CumulativeInflow    string
	CumulativeOutflow   string
	NetCashFlow         string
}

type PeriodReport struct {
	RunID            string
	Period           string
	Income           string
	Expenses         string
	Savings          string
	SavingsRate      string
	Rating           string
	TransactionCount int64
}

const createRun = `-- name: CreateRun :exec
INSERT INTO runs (id, generated_at, months, transaction_count)
VALUES (?, ?, ?, ?)
`

type CreateRunParams struct {
	ID               string
	GeneratedAt      time.Time
	Months           string
	TransactionCount int64
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.ID,
		arg.GeneratedAt,
		arg.Months,
		arg.TransactionCount,
	)
	return err
}

const getRun = `-- name: GetRun :one
SELECT id, generated_at, months, transaction_count FROM runs
WHERE id = ?
`

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i Run
	err := row.Scan(
		&i.ID,
		&i.GeneratedAt,
		&i.Months,
		&i.TransactionCount,
	)
	return i, err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (
    run_id, month, row_number, transaction_date, remarks,
    deposit, withdrawal, balance,
    transaction_type, transaction_category, insight,
    cumulative_inflow, cumulative_outflow, net_cash_flow
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	RunID               string
	Month               string
	RowNumber           int64
	TransactionDate     sql.NullString
	Remarks             string
	Deposit             sql.NullString
	Withdrawal          sql.NullString
	Balance             sql.NullString
	TransactionType     string
	TransactionCategory string
	Insight             string
	CumulativeInflow    string
	CumulativeOutflow   string
	NetCashFlow         string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.RunID,
		arg.Month,
		arg.RowNumber,
		arg.TransactionDate,
		arg.Remarks,
		arg.Deposit,
		arg.Withdrawal,
		arg.Balance,
		arg.TransactionType,
		arg.TransactionCategory,
		arg.Insight,
		arg.CumulativeInflow,
		arg.CumulativeOutflow,
		arg.NetCashFlow,
	)
	return err
}

const listTransactionsByRun = `-- name: ListTransactionsByRun :many
SELECT id, run_id, month, row_number, transaction_date, remarks,
       deposit, withdrawal, balance,
       transaction_type, transaction_category, insight,
       cumulative_inflow, cumulative_outflow, net_cash_flow
FROM transactions
WHERE run_id = ?
ORDER BY id
`

func (q *Queries) ListTransactionsByRun(ctx context.Context, runID string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByRun, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.RunID,
			&i.Month,
			&i.RowNumber,
			&i.TransactionDate,
			&i.Remarks,
			&i.Deposit,
			&i.Withdrawal,
			&i.Balance,
			&i.TransactionType,
			&i.TransactionCategory,
			&i.Insight,
			&i.CumulativeInflow,
			&i.CumulativeOutflow,
			&i.NetCashFlow,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTransactionsByCategory = `-- name: CountTransactionsByCategory :many
SELECT transaction_category, COUNT(*) AS total
FROM transactions
WHERE run_id = ?
GROUP BY transaction_category
ORDER BY transaction_category
`

type CountTransactionsByCategoryRow struct {
	TransactionCategory string
	Total               int64
}

func (q *Queries) CountTransactionsByCategory(ctx context.Context, runID string) ([]CountTransactionsByCategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, countTransactionsByCategory, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountTransactionsByCategoryRow
	for rows.Next() {
		var i CountTransactionsByCategoryRow
		if err := rows.Scan(&i.TransactionCategory, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPeriodReport = `-- name: CreatePeriodReport :exec
INSERT INTO period_reports (
    run_id, period, income, expenses, savings, savings_rate, rating, transaction_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreatePeriodReportParams struct {
	RunID            string
	Period           string
	Income           string
	Expenses         string
	Savings          string
	SavingsRate      string
	Rating           string
	TransactionCount int64
}

func (q *Queries) CreatePeriodReport(ctx context.Context, arg CreatePeriodReportParams) error {
	_, err := q.db.ExecContext(ctx, createPeriodReport,
		arg.RunID,
		arg.Period,
		arg.Income,
		arg.Expenses,
		arg.Savings,
		arg.SavingsRate,
		arg.Rating,
		arg.TransactionCount,
	)
	return err
}

const listPeriodReports = `-- name: ListPeriodReports :many
SELECT run_id, period, income, expenses, savings, savings_rate, rating, transaction_count
FROM period_reports
WHERE run_id = ?
ORDER BY rowid
`

func (q *Queries) ListPeriodReports(ctx context.Context, runID string) ([]PeriodReport, error) {
	rows, err := q.db.QueryContext(ctx, listPeriodReports, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PeriodReport
	for rows.Next() {
		var i PeriodReport
		if err := rows.Scan(
			&i.RunID,
			&i.Period,
			&i.Income,
			&i.Expenses,
			&i.Savings,
			&i.SavingsRate,
			&i.Rating,
			&i.TransactionCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
