package backend

import (
	"context"
	"errors"
	"fmt"

	"moneyanalysis/internal/amqp"
	"moneyanalysis/internal/export"
	"moneyanalysis/internal/log"
	gsheet "moneyanalysis/internal/sheets/google"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new output factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Create builds the configured export sinks. AMQP and Google Sheets are
// optional: a connection failure is logged and the run continues without
// them.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Outputs, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	out := &Outputs{}
	for _, et := range config.Exports {
		switch et {
		case JSONFileExport:
			out.Sinks = append(out.Sinks, export.NewJSONFile(config.JSONPath))
		case SQLiteExport:
			out.Sinks = append(out.Sinks, export.NewSQLite(config.SQLiteDBPath))
		case ElasticsearchExport:
			out.Sinks = append(out.Sinks, export.NewElasticsearch(config.ElasticsearchIndex, f.logger, config.ElasticsearchURLs...))
		default:
			return nil, fmt.Errorf("unsupported export type: %s", et)
		}
		f.logger.InfoContext(ctx, "Initialized export sink", log.FieldBackend, et.String())
	}

	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			amqpClient = client
			out.Events = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	if config.GoogleSpreadsheetID != "" {
		cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize Google Sheets client, continuing without report rows", log.FieldError, err)
		} else {
			out.Reports = cli
			f.logger.InfoContext(ctx, "Initialized Google Sheets publisher")
		}
	}

	sinks := out.Sinks
	out.Cleanup = func() error {
		var errs []error
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
			}
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close amqp: %w", err))
			}
		}
		return errors.Join(errs...)
	}
	return out, nil
}
