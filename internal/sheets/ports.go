package sheets

import (
	"context"

	"moneyanalysis/internal/core"
)

// Ports for inbound and outbound spreadsheet adapters.
type (
	// StatementReader loads one month of statement lines.
	StatementReader interface {
		Read(ctx context.Context, month, path string) (*core.Dataset, error)
	}

	// MonthWriter persists the enriched dataset of a month together with its
	// grouped summaries. It returns the path of the written workbook.
	MonthWriter interface {
		WriteMonth(ctx context.Context, ds *core.Dataset, s core.Summaries) (path string, err error)
	}

	// YearWriter persists the concatenation of every processed month.
	YearWriter interface {
		WriteYear(ctx context.Context, ds *core.Dataset) (path string, err error)
	}

	// ReportPublisher appends a period report to a shared spreadsheet.
	ReportPublisher interface {
		PublishReport(ctx context.Context, r core.PeriodReport) (rowRef string, err error)
	}
)
