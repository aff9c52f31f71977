// Package jobs runs the analysis on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"moneyanalysis/internal/log"
)

// RunFunc is one scheduled execution.
type RunFunc func(ctx context.Context) error

// Scheduler triggers a RunFunc on a standard five-field cron spec.
type Scheduler struct {
	spec     string
	timeZone string
	run      RunFunc
	logger   *log.Logger
}

// NewScheduler validates spec and returns a scheduler for run.
func NewScheduler(spec, timeZone string, run RunFunc, logger *log.Logger) (*Scheduler, error) {
	if run == nil {
		return nil, fmt.Errorf("scheduler requires a run function")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Scheduler{
		spec:     spec,
		timeZone: timeZone,
		run:      run,
		logger:   logger.WithComponent(log.ComponentScheduler),
	}, nil
}

// Run starts the cron loop and blocks until ctx is done. An unknown time
// zone falls back to UTC. Overlapping triggers are skipped while a run is
// still in progress.
func (s *Scheduler) Run(ctx context.Context) error {
	loc, err := time.LoadLocation(s.timeZone)
	if err != nil {
		loc = time.UTC
		s.logger.WarnContext(ctx, "Invalid timezone, falling back to UTC", log.FieldTimeZone, s.timeZone, log.FieldError, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	_, err = c.AddFunc(s.spec, func() {
		start := time.Now()
		s.logger.InfoContext(ctx, "Starting scheduled analysis", "at", start.In(loc).Format(time.RFC3339))
		if err := s.run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Scheduled analysis failed", log.FieldError, err)
			return
		}
		s.logger.InfoContext(ctx, "Scheduled analysis completed", log.FieldDuration, time.Since(start).Milliseconds())
	})
	if err != nil {
		return fmt.Errorf("unable to schedule analysis: %w", err)
	}

	c.Start()
	s.logger.InfoContext(ctx, "Scheduler started", log.FieldSchedule, s.spec, log.FieldTimeZone, loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.InfoContext(context.Background(), "Scheduler stopped")
	return nil
}

// cronLogger adapts the slog wrapper to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, log.FieldError, err)...)
}
