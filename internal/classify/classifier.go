// Package classify assigns a type, a category and an insight to each
// statement line.
//
// Category and insight decisions come from static ordered rule tables that
// are evaluated top to bottom; the first rule with a matching keyword wins.
// Reordering a table changes the result for remarks that match more than one
// rule.
package classify

import (
	"strings"

	"moneyanalysis/internal/core"
)

// Rule maps a keyword set to a label. A rule matches when any keyword is a
// substring of the lower-cased remarks.
type Rule[T any] struct {
	Keywords []string
	Label    T
}

func (r Rule[T]) matches(remarks string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(remarks, kw) {
			return true
		}
	}
	return false
}

// Result is the classification of a single transaction.
type Result struct {
	Type     core.TransactionType
	Category core.TransactionCategory
	Insight  string
}

var categoryRules = []Rule[core.TransactionCategory]{
	{[]string{"bbps", "bil", "bpay"}, core.CategoryBillPayment},
	{[]string{"imps", "inf", "inft", "neft", "mmt", "payc"}, core.CategoryFundTransfer},
	{[]string{"bctt", "n chg", "t chg"}, core.CategoryBankingTax},
	{[]string{"dtax", "idtx"}, core.CategoryTaxPayment},
	{[]string{"ccwd", "vat", "mat", "nfs"}, core.CategoryCardlessAtmUsage},
	{[]string{"eba", "sgb"}, core.CategoryInvestment},
	{[]string{"lccbrn", "uccbrn"}, core.CategoryChequeTransaction},
	{[]string{"lnpy"}, core.CategoryLoanPayment},
	{[]string{"onl", "pac", "rchg", "top", "smo"}, core.CategoryOtherServices},
}

var insightRules = []Rule[string]{
	{[]string{"vat", "mat", "nfs"}, "Other bank ATM usage - May incur charges"},
	{[]string{"n chg", "t chg", "bctt"}, "Banking charges applied"},
	{[]string{"eba", "sgb"}, "Investment transaction"},
	{[]string{"bbps", "bil", "bpay"}, "Utility/Bill payment"},
	{[]string{"dtax", "idtx"}, "Tax payment"},
	{[]string{"lnpy"}, "Loan payment - Check for timely credit"},
}

// CategoryRules returns a copy of the category table in evaluation order.
func CategoryRules() []Rule[core.TransactionCategory] {
	return append([]Rule[core.TransactionCategory](nil), categoryRules...)
}

// InsightRules returns a copy of the insight table in evaluation order.
func InsightRules() []Rule[string] {
	return append([]Rule[string](nil), insightRules...)
}

// Classify decides type, category and insight for tx. It only reads tx.
func Classify(tx core.Transaction) Result {
	remarks := strings.ToLower(tx.RemarksText())
	return Result{
		Type:     transactionType(tx, remarks),
		Category: firstMatch(categoryRules, remarks, core.CategoryMiscellaneous),
		Insight:  firstMatch(insightRules, remarks, core.DefaultInsight),
	}
}

// Type decides only the transaction type.
func Type(tx core.Transaction) core.TransactionType {
	return transactionType(tx, strings.ToLower(tx.RemarksText()))
}

// Category decides only the category from free-text remarks.
func Category(remarks string) core.TransactionCategory {
	return firstMatch(categoryRules, strings.ToLower(remarks), core.CategoryMiscellaneous)
}

// Insight decides only the insight text from free-text remarks.
func Insight(remarks string) string {
	return firstMatch(insightRules, strings.ToLower(remarks), core.DefaultInsight)
}

func transactionType(tx core.Transaction, remarks string) core.TransactionType {
	switch {
	case tx.IsDebit():
		switch {
		case strings.Contains(remarks, "transfer"):
			return core.TypeFundTransferOutgoing
		case strings.Contains(remarks, "salary"):
			return core.TypeSalaryDeduction
		default:
			return core.TypeExpense
		}
	case tx.IsCredit():
		switch {
		case strings.Contains(remarks, "salary"):
			return core.TypeSalaryCredit
		case strings.Contains(remarks, "refund"):
			return core.TypeRefund
		case strings.Contains(remarks, "transfer"):
			return core.TypeFundTransferIncoming
		default:
			return core.TypeIncome
		}
	default:
		return core.TypeUnknown
	}
}

func firstMatch[T any](rules []Rule[T], remarks string, fallback T) T {
	for _, r := range rules {
		if r.matches(remarks) {
			return r.Label
		}
	}
	return fallback
}

// Annotate classifies every transaction of ds in place and returns the rows
// that carry both a deposit and a withdrawal. Those rows are typed by the
// withdrawal branch.
func Annotate(ds *core.Dataset) (ambiguous []int) {
	for i := range ds.Transactions {
		tx := &ds.Transactions[i]
		res := Classify(*tx)
		tx.Type, tx.Category, tx.Insight = res.Type, res.Category, res.Insight
		if tx.IsCredit() && tx.IsDebit() {
			ambiguous = append(ambiguous, tx.Row)
		}
	}
	return ambiguous
}
