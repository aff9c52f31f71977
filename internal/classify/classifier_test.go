package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyanalysis/internal/core"
)

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func tx(remarks string, deposit, withdrawal decimal.NullDecimal) core.Transaction {
	return core.Transaction{Remarks: remarks, HasRemarks: remarks != "", Deposit: deposit, Withdrawal: withdrawal}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		tx       core.Transaction
		typ      core.TransactionType
		category core.TransactionCategory
		insight  string
	}{
		{
			name:     "outgoing neft transfer",
			tx:       tx("NEFT TRANSFER TO JOHN", decimal.NullDecimal{}, amount(500)),
			typ:      core.TypeFundTransferOutgoing,
			category: core.CategoryFundTransfer,
			insight:  core.DefaultInsight,
		},
		{
			name:     "bill payment",
			tx:       tx("BBPS ELECTRICITY BILL", decimal.NullDecimal{}, amount(200)),
			typ:      core.TypeExpense,
			category: core.CategoryBillPayment,
			insight:  "Utility/Bill payment",
		},
		{
			name:     "salary credit",
			tx:       tx("SALARY CREDIT MAY", amount(50000), decimal.NullDecimal{}),
			typ:      core.TypeSalaryCredit,
			category: core.CategoryMiscellaneous,
			insight:  core.DefaultInsight,
		},
		{
			name:     "salary deduction",
			tx:       tx("salary advance recovery", decimal.NullDecimal{}, amount(1000)),
			typ:      core.TypeSalaryDeduction,
			category: core.CategoryMiscellaneous,
			insight:  core.DefaultInsight,
		},
		{
			name:     "refund",
			tx:       tx("REFUND FROM MERCHANT", amount(99), decimal.NullDecimal{}),
			typ:      core.TypeRefund,
			category: core.CategoryMiscellaneous,
			insight:  core.DefaultInsight,
		},
		{
			name:     "incoming transfer",
			tx:       tx("IMPS TRANSFER FROM ASHA", amount(2500), decimal.NullDecimal{}),
			typ:      core.TypeFundTransferIncoming,
			category: core.CategoryFundTransfer,
			insight:  core.DefaultInsight,
		},
		{
			name:     "plain income",
			tx:       tx("INT.PD", amount(12), decimal.NullDecimal{}),
			typ:      core.TypeIncome,
			category: core.CategoryMiscellaneous,
			insight:  core.DefaultInsight,
		},
		{
			name:     "zero amounts are unknown",
			tx:       tx("ADJ", amount(0), amount(0)),
			typ:      core.TypeUnknown,
			category: core.CategoryMiscellaneous,
			insight:  core.DefaultInsight,
		},
		{
			name:     "other bank atm",
			tx:       tx("NFS/CASH WDL/ATM 123", decimal.NullDecimal{}, amount(2000)),
			typ:      core.TypeExpense,
			category: core.CategoryCardlessAtmUsage,
			insight:  "Other bank ATM usage - May incur charges",
		},
		{
			name:     "banking charges",
			tx:       tx("N CHG SMS ALERT", decimal.NullDecimal{}, amount(15)),
			typ:      core.TypeExpense,
			category: core.CategoryBankingTax,
			insight:  "Banking charges applied",
		},
		{
			name:     "loan",
			tx:       tx("LNPY EMI 04", decimal.NullDecimal{}, amount(12000)),
			typ:      core.TypeExpense,
			category: core.CategoryLoanPayment,
			insight:  "Loan payment - Check for timely credit",
		},
		{
			name:     "tax",
			tx:       tx("DTAX CHALLAN", decimal.NullDecimal{}, amount(5000)),
			typ:      core.TypeExpense,
			category: core.CategoryTaxPayment,
			insight:  "Tax payment",
		},
		{
			name:     "investment",
			tx:       tx("SGB TRANCHE", decimal.NullDecimal{}, amount(5000)),
			typ:      core.TypeExpense,
			category: core.CategoryInvestment,
			insight:  "Investment transaction",
		},
		{
			name:     "missing remarks match as nan",
			tx:       core.Transaction{Withdrawal: amount(10)},
			typ:      core.TypeExpense,
			category: core.CategoryMiscellaneous,
			insight:  core.DefaultInsight,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.tx)
			assert.Equal(t, tc.typ, got.Type)
			assert.Equal(t, tc.category, got.Category)
			assert.Equal(t, tc.insight, got.Insight)
		})
	}
}

func TestCategoryFirstRuleWins(t *testing.T) {
	// "bil" (rule 1) and "nfs" (rule 5) both match.
	assert.Equal(t, core.CategoryBillPayment, Category("NFS BILPAY"))
	// "bpay" (insight rule 4) and "vat" (insight rule 1).
	assert.Equal(t, "Other bank ATM usage - May incur charges", Insight("bpay vat"))
}

func TestRuleTablesArePinned(t *testing.T) {
	var cats []core.TransactionCategory
	for _, r := range CategoryRules() {
		cats = append(cats, r.Label)
	}
	assert.Equal(t, core.TransactionCategories()[:len(cats)], cats)
	assert.Equal(t, []string{"bbps", "bil", "bpay"}, CategoryRules()[0].Keywords)

	insights := InsightRules()
	require.Len(t, insights, 6)
	assert.Equal(t, "Other bank ATM usage - May incur charges", insights[0].Label)
	assert.Equal(t, "Loan payment - Check for timely credit", insights[5].Label)

	// callers get a copy
	rules := CategoryRules()
	rules[0].Label = core.CategoryMiscellaneous
	assert.Equal(t, core.CategoryBillPayment, CategoryRules()[0].Label)
}

func TestClassifyIsDeterministic(t *testing.T) {
	in := tx("UPI/PAYC/ONL TOP", decimal.NullDecimal{}, amount(42))
	first := Classify(in)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, Classify(in))
	}
}

func TestAnnotate(t *testing.T) {
	ds := &core.Dataset{Transactions: []core.Transaction{
		{Row: 1, Remarks: "NEFT TRANSFER", HasRemarks: true, Withdrawal: amount(10)},
		{Row: 2, Remarks: "salary", HasRemarks: true, Deposit: amount(5), Withdrawal: amount(3)},
	}}
	ambiguous := Annotate(ds)
	assert.Equal(t, []int{2}, ambiguous)
	assert.Equal(t, core.TypeFundTransferOutgoing, ds.Transactions[0].Type)
	assert.Equal(t, core.TypeSalaryDeduction, ds.Transactions[1].Type)
	assert.Equal(t, core.CategoryFundTransfer, ds.Transactions[0].Category)
}
