package backend

import (
	"fmt"
	"strings"

	"moneyanalysis/internal/config"
)

// Config holds configuration for output creation
type Config struct {
	Exports []ExportType

	JSONPath string

	SQLiteDBPath string

	ElasticsearchURLs  []string
	ElasticsearchIndex string

	// AMQP is enabled when AMQPURL is set
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets is enabled when GoogleSpreadsheetID is set
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	var exports []ExportType
	for _, b := range appConfig.ExportBackends {
		et := ExportType(strings.ToLower(strings.TrimSpace(b)))
		if !et.IsValid() {
			return Config{}, fmt.Errorf("invalid export backend in config: %s", b)
		}
		exports = append(exports, et)
	}

	return Config{
		Exports: exports,

		JSONPath:     appConfig.ExportJSONPath,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		ElasticsearchURLs:  appConfig.ElasticsearchURLs,
		ElasticsearchIndex: appConfig.ElasticsearchIndex,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSheetName:     appConfig.GoogleSheetName,
	}, nil
}

// Validate validates the output configuration
func (c Config) Validate() error {
	for _, et := range c.Exports {
		switch et {
		case JSONFileExport:
			if c.JSONPath == "" {
				return fmt.Errorf("JSON path is required for jsonfile export")
			}
		case SQLiteExport:
			if c.SQLiteDBPath == "" {
				return fmt.Errorf("SQLite database path is required for sqlite export")
			}
		case ElasticsearchExport:
			if len(c.ElasticsearchURLs) == 0 || c.ElasticsearchIndex == "" {
				return fmt.Errorf("Elasticsearch URLs and index are required for elasticsearch export")
			}
		default:
			return fmt.Errorf("invalid export type: %s", et)
		}
	}
	return nil
}
