package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Export backend names accepted in EXPORT_BACKENDS.
const (
	ExportJSONFile      = "jsonfile"
	ExportSQLite        = "sqlite"
	ExportElasticsearch = "elasticsearch"
)

var validMonths = map[string]bool{
	"JAN": true, "FEB": true, "MAR": true, "APR": true, "MAY": true, "JUN": true,
	"JUL": true, "AUG": true, "SEP": true, "OCT": true, "NOV": true, "DEC": true,
}

type Config struct {
	// Input and output layout
	InputDir      string   `yaml:"input_dir"`
	OutputDir     string   `yaml:"output_dir"`
	Months        []string `yaml:"months"`
	InputFileName string   `yaml:"input_file_name"`

	// Statement column names
	DateColumn       string `yaml:"date_column"`
	DepositColumn    string `yaml:"deposit_column"`
	WithdrawalColumn string `yaml:"withdrawal_column"`
	RemarksColumn    string `yaml:"remarks_column"`
	BalanceColumn    string `yaml:"balance_column"`

	// Amount above which a transaction is listed in the large transactions report
	LargeTransactionThreshold string `yaml:"large_transaction_threshold"`

	LogLevel string `yaml:"log_level"`

	// Export sinks
	ExportBackends     []string `yaml:"export_backends"`
	ExportJSONPath     string   `yaml:"export_json_path"`
	SQLiteDBPath       string   `yaml:"sqlite_db_path"`
	ElasticsearchURLs  []string `yaml:"elasticsearch_urls"`
	ElasticsearchIndex string   `yaml:"elasticsearch_index"`

	// AMQP month events
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Google Sheets report rows
	GoogleSpreadsheetID string `yaml:"google_spreadsheet_id"`
	GoogleSheetName     string `yaml:"google_sheet_name"`

	// Scheduler
	ScheduleCron string `yaml:"schedule_cron"`
	TimeZone     string `yaml:"time_zone"`
}

func Load() *Config {
	cfg := &Config{
		InputDir:      getEnv("INPUT_DIR", "statements"),
		OutputDir:     getEnv("OUTPUT_DIR", "statements"),
		Months:        getEnvList("MONTHS", nil),
		InputFileName: getEnv("INPUT_FILE_NAME", "transaction"),

		DateColumn:       getEnv("DATE_COLUMN", ""),
		DepositColumn:    getEnv("DEPOSIT_COLUMN", ""),
		WithdrawalColumn: getEnv("WITHDRAWAL_COLUMN", ""),
		RemarksColumn:    getEnv("REMARKS_COLUMN", ""),
		BalanceColumn:    getEnv("BALANCE_COLUMN", ""),

		LargeTransactionThreshold: getEnv("LARGE_TRANSACTION_THRESHOLD", "100000"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		ExportBackends:     getEnvList("EXPORT_BACKENDS", nil),
		ExportJSONPath:     getEnv("EXPORT_JSON_PATH", "statements/export/transactions.json"),
		SQLiteDBPath:       getEnv("SQLITE_DB_PATH", "statements/export/moneyanalysis.db"),
		ElasticsearchURLs:  getEnvList("ELASTICSEARCH_URLS", []string{"http://localhost:9200"}),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "moneyanalysis-transactions"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moneyanalysis"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "month_processed"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Reports"),

		ScheduleCron: getEnv("SCHEDULE_CRON", "0 6 1 * *"),
		TimeZone:     getEnv("TIME_ZONE", "Asia/Kolkata"),
	}

	return cfg
}

// LoadFile loads the environment configuration and overlays the keys set in
// the YAML file at path.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Threshold returns the large transaction threshold as a decimal.
func (c *Config) Threshold() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(c.LargeTransactionThreshold))
}

// HasExport reports whether the named export backend is enabled.
func (c *Config) HasExport(name string) bool {
	for _, b := range c.ExportBackends {
		if strings.EqualFold(strings.TrimSpace(b), name) {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.InputDir) == "" {
		errors = append(errors, "input directory cannot be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty")
	}
	if strings.TrimSpace(c.InputFileName) == "" {
		errors = append(errors, "input file name cannot be empty")
	}

	for _, m := range c.Months {
		if !validMonths[strings.ToUpper(strings.TrimSpace(m))] {
			errors = append(errors, fmt.Sprintf("invalid month '%s': must be one of JAN..DEC", m))
		}
	}

	if d, err := c.Threshold(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid large transaction threshold '%s': must be a number", c.LargeTransactionThreshold))
	} else if !d.IsPositive() {
		errors = append(errors, fmt.Sprintf("invalid large transaction threshold %s: must be positive", d))
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	// Validate export backends
	validBackends := []string{ExportJSONFile, ExportSQLite, ExportElasticsearch}
	for _, b := range c.ExportBackends {
		isValidBackend := false
		for _, v := range validBackends {
			if strings.EqualFold(strings.TrimSpace(b), v) {
				isValidBackend = true
				break
			}
		}
		if !isValidBackend {
			errors = append(errors, fmt.Sprintf("invalid export backend '%s': must be one of %v", b, validBackends))
		}
	}
	if c.HasExport(ExportJSONFile) && c.ExportJSONPath == "" {
		errors = append(errors, "JSON export path cannot be empty when using jsonfile export")
	}
	if c.HasExport(ExportSQLite) && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite export")
	}
	if c.HasExport(ExportElasticsearch) {
		if len(c.ElasticsearchURLs) == 0 {
			errors = append(errors, "Elasticsearch URLs are required when using elasticsearch export")
		}
		for _, u := range c.ElasticsearchURLs {
			if parsed, err := url.Parse(u); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
				errors = append(errors, fmt.Sprintf("invalid Elasticsearch URL '%s'", u))
			}
		}
		if c.ElasticsearchIndex == "" {
			errors = append(errors, "Elasticsearch index cannot be empty when using elasticsearch export")
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required when a spreadsheet ID is provided")
	}

	if c.ScheduleCron != "" {
		if _, err := cron.ParseStandard(c.ScheduleCron); err != nil {
			errors = append(errors, fmt.Sprintf("invalid schedule '%s': %v", c.ScheduleCron, err))
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
