// Package cli provides common CLI initialization utilities shared by the
// moneyanalysis commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"moneyanalysis/internal/backend"
	"moneyanalysis/internal/config"
	"moneyanalysis/internal/log"
	"moneyanalysis/internal/report"
	"moneyanalysis/internal/services"
	"moneyanalysis/internal/sheets/excel"
	"moneyanalysis/internal/statement"
	"moneyanalysis/internal/visual"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger. An unknown level falls back to info.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := log.ParseLevel(level); err == nil {
		cfg.Level = lvl
		cfg.Handler = nil
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// NewAnalyzer wires the file-based pipeline and the configured outputs. The
// returned cleanup closes export sinks and the AMQP connection.
func NewAnalyzer(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.Analyzer, backend.CleanupFunc, error) {
	threshold, err := cfg.Threshold()
	if err != nil {
		return nil, nil, fmt.Errorf("large transaction threshold: %w", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	outputs, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create outputs: %w", err)
	}

	columns := statement.Columns{
		Date:       cfg.DateColumn,
		Deposit:    cfg.DepositColumn,
		Withdrawal: cfg.WithdrawalColumn,
		Remarks:    cfg.RemarksColumn,
		Balance:    cfg.BalanceColumn,
	}.WithDefaults()
	writer := excel.NewWriter(cfg.OutputDir, logger)

	deps := services.Deps{
		Locator:   statement.FileLocator{InputDir: cfg.InputDir, FileName: cfg.InputFileName},
		Reader:    statement.NewReader(columns, logger),
		Months:    writer,
		Year:      writer,
		Reporter:  report.NewReporter(cfg.OutputDir, logger),
		Visuals:   visual.New(threshold, logger),
		Sinks:     outputs.Sinks,
		OutputDir: cfg.OutputDir,
		Logger:    logger,
	}
	// Assigned only when set so the interfaces stay nil when disabled.
	if outputs.Events != nil {
		deps.Events = outputs.Events
	}
	if outputs.Reports != nil {
		deps.Reports = outputs.Reports
	}

	analyzer, err := services.NewAnalyzer(deps)
	if err != nil {
		_ = outputs.Cleanup()
		return nil, nil, err
	}
	return analyzer, outputs.Cleanup, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
