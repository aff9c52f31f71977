package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types, in the precedence order the classifier evaluates them.
const (
	TypeFundTransferOutgoing TransactionType = "Fund Transfer (Outgoing)"
	TypeSalaryDeduction      TransactionType = "Salary Deduction"
	TypeExpense              TransactionType = "Expense"
	TypeSalaryCredit         TransactionType = "Salary Credit"
	TypeRefund               TransactionType = "Refund"
	TypeFundTransferIncoming TransactionType = "Fund Transfer (Incoming)"
	TypeIncome               TransactionType = "Income"
	TypeUnknown              TransactionType = "Unknown"
)

const (
	CategoryBillPayment       TransactionCategory = "Bill Payment"
	CategoryFundTransfer      TransactionCategory = "Fund Transfer"
	CategoryBankingTax        TransactionCategory = "Banking Tax"
	CategoryTaxPayment        TransactionCategory = "Tax Payment"
	CategoryCardlessAtmUsage  TransactionCategory = "Cardless/ATM Usage"
	CategoryInvestment        TransactionCategory = "Investment"
	CategoryChequeTransaction TransactionCategory = "Cheque Transaction"
	CategoryLoanPayment       TransactionCategory = "Loan Payment"
	CategoryOtherServices     TransactionCategory = "Other Services"
	CategoryMiscellaneous     TransactionCategory = "Miscellaneous"
)

// DefaultInsight is used when no insight rule matches.
const DefaultInsight = "Regular transaction"

type (
	TransactionType     string
	TransactionCategory string

	// Date is a calendar date. The zero value stands for a missing or
	// unparseable date.
	Date struct {
		time.Time
	}

	// Transaction is one statement line plus the columns derived from it.
	Transaction struct {
		// Row is the 1-based data row in the source statement.
		Row int
		// Cells holds the raw cells aligned with Dataset.Header.
		Cells []string

		Date       Date
		Deposit    decimal.NullDecimal
		Withdrawal decimal.NullDecimal
		Balance    decimal.NullDecimal
		Remarks    string
		HasRemarks bool

		Type     TransactionType
		Category TransactionCategory
		Insight  string

		CumulativeInflow  decimal.Decimal
		CumulativeOutflow decimal.Decimal
		NetCashFlow       decimal.Decimal

		FormattedWithdrawal  string
		FormattedDeposit     string
		FormattedBalance     string
		FormattedNetCashFlow string
	}

	// ColumnMap locates the required columns inside a statement header.
	ColumnMap struct {
		Date       int
		Deposit    int
		Withdrawal int
		Remarks    int
		Balance    int
	}

	// Dataset is one month of transactions in original statement order.
	Dataset struct {
		Month        string
		Source       string
		Header       []string
		Columns      ColumnMap
		Transactions []Transaction
		// InvalidDates lists the rows whose date cell could not be parsed.
		InvalidDates []int
	}
)

func (t TransactionType) String() string     { return string(t) }
func (c TransactionCategory) String() string { return string(c) }

// TransactionTypes returns every type in precedence order.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		TypeFundTransferOutgoing, TypeSalaryDeduction, TypeExpense,
		TypeSalaryCredit, TypeRefund, TypeFundTransferIncoming,
		TypeIncome, TypeUnknown,
	}
}

// TransactionCategories returns every category in rule order, Miscellaneous last.
func TransactionCategories() []TransactionCategory {
	return []TransactionCategory{
		CategoryBillPayment, CategoryFundTransfer, CategoryBankingTax,
		CategoryTaxPayment, CategoryCardlessAtmUsage, CategoryInvestment,
		CategoryChequeTransaction, CategoryLoanPayment, CategoryOtherServices,
		CategoryMiscellaneous,
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is missing.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String renders the date as dd/mm/yyyy, or "" when missing.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

// RemarksText returns the text the rule tables match against.
func (t Transaction) RemarksText() string {
	if !t.HasRemarks {
		return "nan"
	}
	return t.Remarks
}

// IsCredit reports whether the row carries a positive deposit.
func (t Transaction) IsCredit() bool {
	return t.Deposit.Valid && t.Deposit.Decimal.IsPositive()
}

// IsDebit reports whether the row carries a positive withdrawal.
func (t Transaction) IsDebit() bool {
	return t.Withdrawal.Valid && t.Withdrawal.Decimal.IsPositive()
}

// DepositOrZero returns the deposit with null treated as zero.
func (t Transaction) DepositOrZero() decimal.Decimal {
	if !t.Deposit.Valid {
		return decimal.Zero
	}
	return t.Deposit.Decimal
}

// WithdrawalOrZero returns the withdrawal with null treated as zero.
func (t Transaction) WithdrawalOrZero() decimal.Decimal {
	if !t.Withdrawal.Valid {
		return decimal.Zero
	}
	return t.Withdrawal.Decimal
}

// Len returns the number of transactions.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Transactions)
}

// Concat joins datasets in the given order, keeping each one's row order.
// The header of the result is the union of the input headers in first-seen
// order. Repeated names, blank ones included, are matched by occurrence so
// the second blank column of one month lines up with the second blank
// column of the next.
func Concat(month string, parts []*Dataset) *Dataset {
	out := &Dataset{Month: month}
	index := map[columnKey]int{}
	keys := make([][]columnKey, len(parts))
	for n, p := range parts {
		keys[n] = columnKeys(p.Header)
		for i, k := range keys[n] {
			if _, ok := index[k]; ok {
				continue
			}
			index[k] = len(out.Header)
			out.Header = append(out.Header, p.Header[i])
		}
	}
	for n, p := range parts {
		for _, tx := range p.Transactions {
			cells := make([]string, len(out.Header))
			for i, k := range keys[n] {
				if i < len(tx.Cells) {
					cells[index[k]] = tx.Cells[i]
				}
			}
			tx.Cells = cells
			out.Transactions = append(out.Transactions, tx)
		}
	}
	if len(parts) > 0 {
		first := keys[0]
		at := func(i int) int {
			if i < 0 || i >= len(first) {
				return -1
			}
			return index[first[i]]
		}
		cm := parts[0].Columns
		out.Columns = ColumnMap{
			Date:       at(cm.Date),
			Deposit:    at(cm.Deposit),
			Withdrawal: at(cm.Withdrawal),
			Remarks:    at(cm.Remarks),
			Balance:    at(cm.Balance),
		}
	}
	return out
}

type columnKey struct {
	name string
	nth  int
}

func columnKeys(header []string) []columnKey {
	seen := make(map[string]int, len(header))
	out := make([]columnKey, len(header))
	for i, h := range header {
		out[i] = columnKey{name: h, nth: seen[h]}
		seen[h]++
	}
	return out
}
