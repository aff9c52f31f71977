package statement

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"
	ports "moneyanalysis/internal/sheets"
)

var _ ports.StatementReader = (*Reader)(nil)

// Reader loads statements from disk.
type Reader struct {
	columns Columns
	logger  *log.Logger
}

// NewReader returns a Reader matching the given column names. Empty names
// fall back to the defaults.
func NewReader(columns Columns, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Reader{
		columns: columns.WithDefaults(),
		logger:  logger.WithComponent(log.ComponentStatement),
	}
}

// Read loads the statement at path as the dataset of month.
func (r *Reader) Read(ctx context.Context, month, path string) (*core.Dataset, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, fmt.Errorf("read %s statement: %w", month, err)
	}
	ds, badAmounts, err := Parse(month, rows, r.columns)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	if len(badAmounts) > 0 {
		r.logger.WarnContext(ctx, "Unreadable amounts treated as empty",
			log.FieldMonth, month, log.FieldRows, badAmounts)
	}
	r.logger.DebugContext(ctx, "Statement loaded",
		log.FieldMonth, month, log.FieldPath, path, "transactions", ds.Len())
	return ds, nil
}

// ReadRows returns the cells of the first sheet (or the whole CSV file) as
// strings, choosing the decoder from the file extension.
func ReadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported statement format %q", filepath.Ext(path))
	}
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("xlsx has no sheets")
	}
	// Raw values keep dates as serial numbers instead of the cell's
	// month-first display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	return rows, nil
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("xls has no sheets")
	}
	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// Parse builds a dataset from raw rows. The header is the first row within
// HeaderScanRows that carries every required column; rows above it are
// ignored. Unparseable dates become empty and are listed in
// Dataset.InvalidDates. The returned slice lists rows whose amounts could
// not be read and were left empty.
func Parse(month string, rows [][]string, columns Columns) (*core.Dataset, []int, error) {
	columns = columns.WithDefaults()
	headerIdx, cm, err := findHeader(month, rows, columns)
	if err != nil {
		return nil, nil, err
	}
	header := headerNames(rows[headerIdx])
	ds := &core.Dataset{Month: month, Header: header, Columns: cm}

	var badAmounts []int
	for _, raw := range rows[headerIdx+1:] {
		if blank(raw) {
			continue
		}
		cells := make([]string, len(header))
		copy(cells, raw)
		tx := core.Transaction{Row: len(ds.Transactions) + 1, Cells: cells}

		if d, ok := ParseDate(cells[cm.Date]); ok {
			tx.Date = d
		} else {
			ds.InvalidDates = append(ds.InvalidDates, tx.Row)
		}
		var errs []error
		tx.Deposit = amountCell(cells[cm.Deposit], &errs)
		tx.Withdrawal = amountCell(cells[cm.Withdrawal], &errs)
		tx.Balance = amountCell(cells[cm.Balance], &errs)
		if len(errs) > 0 {
			badAmounts = append(badAmounts, tx.Row)
		}
		remarks := strings.TrimSpace(cells[cm.Remarks])
		tx.Remarks, tx.HasRemarks = remarks, remarks != ""

		ds.Transactions = append(ds.Transactions, tx)
	}
	return ds, badAmounts, nil
}

func findHeader(month string, rows [][]string, columns Columns) (int, core.ColumnMap, error) {
	required := columns.Names()
	firstNonEmpty := -1
	for i := 0; i < len(rows) && i < HeaderScanRows; i++ {
		if blank(rows[i]) {
			continue
		}
		if firstNonEmpty < 0 {
			firstNonEmpty = i
		}
		pos := positions(rows[i])
		if len(missing(pos, required)) > 0 {
			continue
		}
		return i, core.ColumnMap{
			Date:       pos[strings.TrimSpace(columns.Date)],
			Deposit:    pos[strings.TrimSpace(columns.Deposit)],
			Withdrawal: pos[strings.TrimSpace(columns.Withdrawal)],
			Remarks:    pos[strings.TrimSpace(columns.Remarks)],
			Balance:    pos[strings.TrimSpace(columns.Balance)],
		}, nil
	}
	var pos map[string]int
	if firstNonEmpty >= 0 {
		pos = positions(rows[firstNonEmpty])
	}
	return 0, core.ColumnMap{}, &core.SchemaError{Month: month, Missing: missing(pos, required)}
}

func positions(row []string) map[string]int {
	pos := make(map[string]int, len(row))
	for i, c := range row {
		c = strings.TrimSpace(c)
		if _, dup := pos[c]; !dup && c != "" {
			pos[c] = i
		}
	}
	return pos
}

func missing(pos map[string]int, required []string) []string {
	var out []string
	for _, name := range required {
		if _, ok := pos[strings.TrimSpace(name)]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func amountCell(s string, errs *[]error) decimal.NullDecimal {
	v, err := core.ParseAmount(s)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// headerNames trims the header cells. Blank cells become "Unnamed: <i>" and
// repeats of an earlier name get a ".<n>" suffix, so every column keeps its
// own name downstream.
func headerNames(row []string) []string {
	out := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			c = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[c]; n > 0 {
			seen[c] = n + 1
			c = fmt.Sprintf("%s.%d", c, n)
		} else {
			seen[c] = 1
		}
		out[i] = c
	}
	return out
}
