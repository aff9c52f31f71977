package backend

import (
	"context"

	"moneyanalysis/internal/amqp"
	"moneyanalysis/internal/export"
	"moneyanalysis/internal/sheets"
)

// EventPublisher announces month outcomes.
type EventPublisher interface {
	PublishMonthProcessed(ctx context.Context, msg *amqp.MonthProcessedMessage) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Outputs bundles the optional run outputs. Nil fields are disabled.
type Outputs struct {
	Sinks   []export.Sink
	Events  EventPublisher
	Reports sheets.ReportPublisher
	Cleanup CleanupFunc
}

// Factory creates outputs based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Outputs, error)
}

// ExportType names an export sink.
type ExportType string

const (
	JSONFileExport      ExportType = "jsonfile"
	SQLiteExport        ExportType = "sqlite"
	ElasticsearchExport ExportType = "elasticsearch"
)

// String implements fmt.Stringer
func (et ExportType) String() string {
	return string(et)
}

// IsValid returns true if the export type is valid
func (et ExportType) IsValid() bool {
	switch et {
	case JSONFileExport, SQLiteExport, ElasticsearchExport:
		return true
	default:
		return false
	}
}
