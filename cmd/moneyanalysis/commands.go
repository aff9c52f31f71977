package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"moneyanalysis/internal/amqp"
	appcli "moneyanalysis/internal/cli"
	"moneyanalysis/internal/config"
	"moneyanalysis/internal/core"
	"moneyanalysis/internal/jobs"
	"moneyanalysis/internal/log"
	"moneyanalysis/internal/worker"
)

type analyzeCmd struct {
	Months    []string `help:"Months to process, e.g. JAN,FEB. Defaults to MONTHS or JAN-DEC."`
	InputDir  string   `name:"input-dir" help:"Directory holding one folder per month."`
	OutputDir string   `name:"output-dir" help:"Directory receiving workbooks and reports."`
}

func (a *analyzeCmd) Run(g *globals) error {
	cfg, logger, err := g.setup(a.Months, a.InputDir, a.OutputDir)
	if err != nil {
		return err
	}
	ctx, cancel := appcli.SignalContext(logger)
	defer cancel()
	return analyze(ctx, cfg, logger)
}

type scheduleCmd struct {
	Cron      string   `help:"Five-field cron spec. Defaults to SCHEDULE_CRON."`
	Months    []string `help:"Months to process on every run."`
	InputDir  string   `name:"input-dir" help:"Directory holding one folder per month."`
	OutputDir string   `name:"output-dir" help:"Directory receiving workbooks and reports."`
}

func (s *scheduleCmd) Run(g *globals) error {
	cfg, logger, err := g.setup(s.Months, s.InputDir, s.OutputDir)
	if err != nil {
		return err
	}
	spec := cfg.ScheduleCron
	if s.Cron != "" {
		spec = s.Cron
	}
	sched, err := jobs.NewScheduler(spec, cfg.TimeZone, func(ctx context.Context) error {
		return analyze(ctx, cfg, logger)
	}, logger)
	if err != nil {
		return err
	}
	ctx, cancel := appcli.SignalContext(logger)
	defer cancel()
	return sched.Run(ctx)
}

type formatCmd struct {
	Amounts []string `arg:"" required:"" help:"Amounts to format, e.g. 1234567.5 or 1,23,456."`
}

func (f *formatCmd) Run(_ *globals) error {
	for _, s := range f.Amounts {
		v, err := core.ParseAmount(s)
		if err != nil {
			return fmt.Errorf("%q: %w", s, err)
		}
		fmt.Println(core.FormatNullINR(v))
	}
	return nil
}

type eventsCmd struct{}

func (e *eventsCmd) Run(g *globals) error {
	cfg, logger, err := g.setup(nil, "", "")
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := appcli.SignalContext(logger)
	defer cancel()
	return worker.NewEventsWorker(client, logger).Run(ctx)
}

// setup loads .env and configuration, applies flag overrides and validates.
func (g *globals) setup(months []string, inputDir, outputDir string) (*config.Config, *log.Logger, error) {
	appcli.LoadEnvFile()
	cfg, err := config.LoadFile(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if len(months) > 0 {
		cfg.Months = months
	}
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	for i, m := range cfg.Months {
		cfg.Months[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := appcli.SetupLogger(cfg.LogLevel)
	logger.Debug("Configuration loaded", "input_dir", cfg.InputDir, "output_dir", cfg.OutputDir)
	return cfg, logger, nil
}

// analyze runs one full analysis. Skipped months are not an error; a run in
// which every attempted month failed is.
func analyze(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	analyzer, cleanup, err := appcli.NewAnalyzer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}()

	res := analyzer.AnalyzeYear(ctx, cfg.Months)
	if res.Err != nil {
		return res.Err
	}
	if res.Processed > 0 {
		fmt.Fprintf(os.Stdout, "Processed %d month(s), skipped %d, failed %d. Output in %s\n",
			res.Processed, res.Skipped, res.Failed, cfg.OutputDir)
	}
	return nil
}
