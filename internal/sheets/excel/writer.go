package excel

import (
	"context"
	"path/filepath"

	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"
	ports "moneyanalysis/internal/sheets"
)

// Sheet names of the month workbook.
const (
	SheetDetailed = "Detailed Transactions"
	SheetByType   = "Transaction Type Summary"
	SheetCategory = "Transaction Category Summary"
	SheetWeekly   = "Weekly Trend"
)

// YearFileName is the combined workbook written under the output root.
const YearFileName = "all_months_transaction_analysis.xlsx"

// DerivedColumns follow the statement's own columns in the detailed sheet.
// The Formatted_ columns are named after the statement's own amount columns,
// see DetailedHeader.
var DerivedColumns = []string{
	"Transaction Type",
	"Transaction Category",
	"Transaction Insights",
	"Cumulative Inflow",
	"Cumulative Outflow",
	"Net Cash Flow",
	"Formatted_Withdrawal Amount (INR )",
	"Formatted_Deposit Amount (INR )",
	"Formatted_Balance (INR )",
	"Formatted_Net Cash Flow",
}

var statHeader = []string{"Count", "Sum", "Mean", "Median"}

var (
	_ ports.MonthWriter = (*Writer)(nil)
	_ ports.YearWriter  = (*Writer)(nil)
)

// Writer produces the month and year analysis workbooks under outputDir.
type Writer struct {
	outputDir string
	logger    *log.Logger
}

func NewWriter(outputDir string, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Writer{outputDir: outputDir, logger: logger.WithComponent(log.ComponentSheets)}
}

// MonthPath returns <outputDir>/<MONTH>/<MONTH>_Transaction_Analysis.xlsx.
func (w *Writer) MonthPath(month string) string {
	return filepath.Join(w.outputDir, month, month+"_Transaction_Analysis.xlsx")
}

// YearPath returns the combined workbook path.
func (w *Writer) YearPath() string {
	return filepath.Join(w.outputDir, YearFileName)
}

// WriteMonth writes the detailed sheet and the three summary sheets. The
// file is closed on every path.
func (w *Writer) WriteMonth(ctx context.Context, ds *core.Dataset, s core.Summaries) (string, error) {
	path := w.MonthPath(ds.Month)
	f, err := NewWorkbook(SheetDetailed, SheetByType, SheetCategory, SheetWeekly)
	if err != nil {
		return "", &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	defer f.Close()

	if err := WriteTable(f, SheetDetailed, DetailedHeader(ds), DetailedRows(ds)); err != nil {
		return "", &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	groups := []struct {
		sheet, key string
		stats      []core.GroupStat
	}{
		{SheetByType, "Transaction Type", s.ByType},
		{SheetCategory, "Transaction Category", s.ByCategory},
		{SheetWeekly, "Week Ending", s.Weekly},
	}
	for _, g := range groups {
		if err := WriteTable(f, g.sheet, append([]string{g.key}, statHeader...), StatRows(g.stats)); err != nil {
			return "", &core.WriteError{Month: ds.Month, Path: path, Err: err}
		}
	}
	if err := Save(f, path); err != nil {
		return "", &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	w.logger.DebugContext(ctx, "Month workbook written", log.FieldMonth, ds.Month, log.FieldPath, path)
	return path, nil
}

// WriteYear writes the combined detailed sheet.
func (w *Writer) WriteYear(ctx context.Context, ds *core.Dataset) (string, error) {
	path := w.YearPath()
	f, err := NewWorkbook(SheetDetailed)
	if err != nil {
		return "", &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	defer f.Close()

	if err := WriteTable(f, SheetDetailed, DetailedHeader(ds), DetailedRows(ds)); err != nil {
		return "", &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	if err := Save(f, path); err != nil {
		return "", &core.WriteError{Month: ds.Month, Path: path, Err: err}
	}
	w.logger.DebugContext(ctx, "Year workbook written", log.FieldPath, path, log.FieldRows, ds.Len())
	return path, nil
}

// DetailedHeader is the statement header followed by DerivedColumns.
func DetailedHeader(ds *core.Dataset) []string {
	out := make([]string, 0, len(ds.Header)+len(DerivedColumns))
	out = append(out, ds.Header...)
	out = append(out, DerivedColumns...)
	n := len(ds.Header)
	for i, col := range []int{ds.Columns.Withdrawal, ds.Columns.Deposit, ds.Columns.Balance} {
		if col >= 0 && col < len(ds.Header) {
			out[n+6+i] = "Formatted_" + ds.Header[col]
		}
	}
	return out
}

// DetailedRows renders every transaction. The five required columns are
// written from their parsed values, the others as read.
func DetailedRows(ds *core.Dataset) [][]any {
	rows := make([][]any, 0, ds.Len())
	cm := ds.Columns
	for _, tx := range ds.Transactions {
		row := make([]any, 0, len(ds.Header)+len(DerivedColumns))
		for i := range ds.Header {
			switch i {
			case cm.Date:
				row = append(row, tx.Date.String())
			case cm.Deposit:
				row = append(row, NullNumber(tx.Deposit))
			case cm.Withdrawal:
				row = append(row, NullNumber(tx.Withdrawal))
			case cm.Balance:
				row = append(row, NullNumber(tx.Balance))
			default:
				if i < len(tx.Cells) {
					row = append(row, tx.Cells[i])
				} else {
					row = append(row, nil)
				}
			}
		}
		row = append(row,
			tx.Type.String(),
			tx.Category.String(),
			tx.Insight,
			Number(tx.CumulativeInflow),
			Number(tx.CumulativeOutflow),
			Number(tx.NetCashFlow),
			tx.FormattedWithdrawal,
			tx.FormattedDeposit,
			tx.FormattedBalance,
			tx.FormattedNetCashFlow,
		)
		rows = append(rows, row)
	}
	return rows
}

// StatRows renders grouped statistics, one row per group.
func StatRows(stats []core.GroupStat) [][]any {
	rows := make([][]any, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []any{s.Key, s.Count, Number(s.Sum), Number(s.Mean), Number(s.Median)})
	}
	return rows
}
