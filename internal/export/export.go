// Package export writes the yearly enriched dataset to optional sinks: a JSON
// file, a SQLite file and an Elasticsearch index.
package export

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneyanalysis/internal/core"
)

// Sink receives the result of a run.
type Sink interface {
	Name() string
	Export(ctx context.Context, b Batch) error
	Close() error
}

// Batch is what a run hands to every sink.
type Batch struct {
	RunID       string
	GeneratedAt time.Time
	Months      []string
	Dataset     *core.Dataset
	Reports     []core.PeriodReport
}

// Document is the exported form of one enriched transaction.
type Document struct {
	ID                string    `json:"id"`
	RunID             string    `json:"run_id"`
	Row               int       `json:"row"`
	Date              *string   `json:"date"`
	Remarks           string    `json:"remarks"`
	Deposit           *string   `json:"deposit"`
	Withdrawal        *string   `json:"withdrawal"`
	Balance           *string   `json:"balance"`
	Type              string    `json:"transaction_type"`
	Category          string    `json:"transaction_category"`
	Insight           string    `json:"insight"`
	CumulativeInflow  string    `json:"cumulative_inflow"`
	CumulativeOutflow string    `json:"cumulative_outflow"`
	NetCashFlow       string    `json:"net_cash_flow"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// JSON renders the document.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// Documents converts the batch dataset. Document IDs are derived from the
// run ID and the row position, so exporting a batch twice overwrites rather
// than duplicates.
func Documents(b Batch) []Document {
	if b.Dataset == nil {
		return nil
	}
	runNS := uuid.NewSHA1(uuid.NameSpaceURL, []byte("moneyanalysis:"+b.RunID))
	out := make([]Document, 0, b.Dataset.Len())
	for i, t := range b.Dataset.Transactions {
		d := Document{
			ID:                uuid.NewSHA1(runNS, []byte(strconv.Itoa(i))).String(),
			RunID:             b.RunID,
			Row:               t.Row,
			Remarks:           t.Remarks,
			Deposit:           amount(t.Deposit),
			Withdrawal:        amount(t.Withdrawal),
			Balance:           amount(t.Balance),
			Type:              t.Type.String(),
			Category:          t.Category.String(),
			Insight:           t.Insight,
			CumulativeInflow:  t.CumulativeInflow.StringFixed(2),
			CumulativeOutflow: t.CumulativeOutflow.StringFixed(2),
			NetCashFlow:       t.NetCashFlow.StringFixed(2),
			GeneratedAt:       b.GeneratedAt.UTC(),
		}
		if !t.Date.IsEmpty() {
			s := t.Date.Format("2006-01-02")
			d.Date = &s
		}
		out = append(out, d)
	}
	return out
}

func amount(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}
