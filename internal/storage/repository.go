package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db            *sql.DB
	queries       *Queries
	schemaVersion uint
}

// NewSQLiteRepository opens the database at dbPath and applies the embedded
// migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:            db,
		queries:       New(db),
		schemaVersion: version,
	}, nil
}

// RecreateSQLiteRepository removes any previous database file at dbPath
// before opening it, so every run starts from an empty schema.
func RecreateSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove previous database: %w", err)
	}
	return NewSQLiteRepository(dbPath)
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint { return r.schemaVersion }

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores the run, every transaction of ds and the period reports in
// a single transaction. months lists the statement months ds was built from.
func (r *SQLiteRepository) SaveRun(ctx context.Context, runID string, generatedAt time.Time, months []string, ds *core.Dataset, reports []core.PeriodReport) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.CreateRun(ctx, CreateRunParams{
		ID:               runID,
		GeneratedAt:      generatedAt.UTC(),
		Months:           strings.Join(months, ","),
		TransactionCount: int64(ds.Len()),
	}); err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	for _, t := range ds.Transactions {
		if err := q.CreateTransaction(ctx, transactionParams(runID, ds.Month, t)); err != nil {
			return fmt.Errorf("create transaction row %d: %w", t.Row, err)
		}
	}

	for _, p := range reports {
		if err := q.CreatePeriodReport(ctx, CreatePeriodReportParams{
			RunID:            runID,
			Period:           p.Period,
			Income:           p.Income.StringFixed(2),
			Expenses:         p.Expenses.StringFixed(2),
			Savings:          p.Savings.StringFixed(2),
			SavingsRate:      p.SavingsRate.StringFixed(2),
			Rating:           string(p.Rating),
			TransactionCount: int64(p.Transactions),
		}); err != nil {
			return fmt.Errorf("create period report %s: %w", p.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	slog.InfoContext(ctx, "Run saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldRunID, runID,
		log.FieldRows, ds.Len(),
		"reports", len(reports))
	return nil
}

// Transactions returns the stored rows of a run in insertion order.
func (r *SQLiteRepository) Transactions(ctx context.Context, runID string) ([]Transaction, error) {
	rows, err := r.queries.ListTransactionsByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return rows, nil
}

// CategoryCounts returns the number of stored transactions per category.
func (r *SQLiteRepository) CategoryCounts(ctx context.Context, runID string) (map[core.TransactionCategory]int64, error) {
	rows, err := r.queries.CountTransactionsByCategory(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("count transactions by category: %w", err)
	}
	out := make(map[core.TransactionCategory]int64, len(rows))
	for _, row := range rows {
		out[core.TransactionCategory(row.TransactionCategory)] = row.Total
	}
	return out, nil
}

// PeriodReports returns the stored reports of a run.
func (r *SQLiteRepository) PeriodReports(ctx context.Context, runID string) ([]core.PeriodReport, error) {
	rows, err := r.queries.ListPeriodReports(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list period reports: %w", err)
	}
	out := make([]core.PeriodReport, 0, len(rows))
	for _, row := range rows {
		p := core.PeriodReport{
			Period:       row.Period,
			Rating:       core.Rating(row.Rating),
			Transactions: int(row.TransactionCount),
		}
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&p.Income, row.Income},
			{&p.Expenses, row.Expenses},
			{&p.Savings, row.Savings},
			{&p.SavingsRate, row.SavingsRate},
		} {
			d, err := decimal.NewFromString(f.src)
			if err != nil {
				return nil, fmt.Errorf("parse stored amount %q for %s: %w", f.src, row.Period, err)
			}
			*f.dst = d
		}
		out = append(out, p)
	}
	return out, nil
}

func transactionParams(runID, month string, t core.Transaction) CreateTransactionParams {
	p := CreateTransactionParams{
		RunID:               runID,
		Month:               month,
		RowNumber:           int64(t.Row),
		Remarks:             t.Remarks,
		Deposit:             nullString(t.Deposit),
		Withdrawal:          nullString(t.Withdrawal),
		Balance:             nullString(t.Balance),
		TransactionType:     string(t.Type),
		TransactionCategory: string(t.Category),
		Insight:             t.Insight,
		CumulativeInflow:    t.CumulativeInflow.String(),
		CumulativeOutflow:   t.CumulativeOutflow.String(),
		NetCashFlow:         t.NetCashFlow.String(),
	}
	if !t.Date.IsEmpty() {
		p.TransactionDate = sql.NullString{String: t.Date.Format(dateLayout), Valid: true}
	}
	return p
}

func nullString(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}
