// Package cashflow computes running inflow, outflow and net cash flow over a
// dataset in statement order.
package cashflow

import (
	"github.com/shopspring/decimal"

	"moneyanalysis/internal/core"
)

// Accumulate writes CumulativeInflow, CumulativeOutflow and NetCashFlow on
// every transaction of ds in one forward scan. Null amounts count as zero.
func Accumulate(ds *core.Dataset) {
	in, out := decimal.Zero, decimal.Zero
	for i := range ds.Transactions {
		tx := &ds.Transactions[i]
		in = in.Add(tx.DepositOrZero())
		out = out.Add(tx.WithdrawalOrZero())
		tx.CumulativeInflow = in
		tx.CumulativeOutflow = out
		tx.NetCashFlow = in.Sub(out)
	}
}

// Totals returns total inflow and outflow over txs.
func Totals(txs []core.Transaction) (inflow, outflow decimal.Decimal) {
	inflow, outflow = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		inflow = inflow.Add(tx.DepositOrZero())
		outflow = outflow.Add(tx.WithdrawalOrZero())
	}
	return inflow, outflow
}

// Format fills the display columns of every transaction.
func Format(ds *core.Dataset) {
	for i := range ds.Transactions {
		tx := &ds.Transactions[i]
		tx.FormattedWithdrawal = core.FormatNullINR(tx.Withdrawal)
		tx.FormattedDeposit = core.FormatNullINR(tx.Deposit)
		tx.FormattedBalance = core.FormatNullINR(tx.Balance)
		tx.FormattedNetCashFlow = core.FormatINR(tx.NetCashFlow)
	}
}
