// Package statement loads monthly bank statement files (.xlsx, .xls, .csv)
// into core datasets.
package statement

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"moneyanalysis/internal/core"
)

// Column names the default bank export uses.
const (
	DefaultDateColumn       = "Transaction Date"
	DefaultDepositColumn    = "Deposit Amount (INR )"
	DefaultWithdrawalColumn = "Withdrawal Amount (INR )"
	DefaultRemarksColumn    = "Transaction Remarks"
	DefaultBalanceColumn    = "Balance (INR )"
)

// Extensions are tried in this order when locating a month's statement.
var Extensions = []string{".xlsx", ".xls", ".csv"}

// HeaderScanRows bounds the search for the header row.
const HeaderScanRows = 20

// Columns names the five required statement columns.
type Columns struct {
	Date       string `yaml:"date"`
	Deposit    string `yaml:"deposit"`
	Withdrawal string `yaml:"withdrawal"`
	Remarks    string `yaml:"remarks"`
	Balance    string `yaml:"balance"`
}

// DefaultColumns returns the column names of the default bank export.
func DefaultColumns() Columns {
	return Columns{
		Date:       DefaultDateColumn,
		Deposit:    DefaultDepositColumn,
		Withdrawal: DefaultWithdrawalColumn,
		Remarks:    DefaultRemarksColumn,
		Balance:    DefaultBalanceColumn,
	}
}

// Names returns the required names in a fixed order.
func (c Columns) Names() []string {
	return []string{c.Date, c.Deposit, c.Withdrawal, c.Remarks, c.Balance}
}

// WithDefaults fills empty names from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if strings.TrimSpace(c.Date) == "" {
		c.Date = d.Date
	}
	if strings.TrimSpace(c.Deposit) == "" {
		c.Deposit = d.Deposit
	}
	if strings.TrimSpace(c.Withdrawal) == "" {
		c.Withdrawal = d.Withdrawal
	}
	if strings.TrimSpace(c.Remarks) == "" {
		c.Remarks = d.Remarks
	}
	if strings.TrimSpace(c.Balance) == "" {
		c.Balance = d.Balance
	}
	return c
}

// Locate finds <inputDir>/<month>/<fileName>.{xlsx,xls,csv}. A missing
// folder or file yields a *core.MissingInputError.
func Locate(inputDir, month, fileName string) (string, error) {
	dir := filepath.Join(inputDir, month)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", &core.MissingInputError{Month: month, Path: dir}
	}
	for _, ext := range Extensions {
		p := filepath.Join(dir, fileName+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return "", &core.MissingInputError{Month: month, Path: filepath.Join(dir, fileName+".xlsx")}
}

// FileLocator resolves month statements under InputDir.
type FileLocator struct {
	InputDir string
	FileName string
}

func (l FileLocator) Locate(month string) (string, error) {
	return Locate(l.InputDir, month, l.FileName)
}
