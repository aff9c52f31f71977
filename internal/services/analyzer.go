package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"moneyanalysis/internal/amqp"
	"moneyanalysis/internal/cashflow"
	"moneyanalysis/internal/classify"
	"moneyanalysis/internal/core"
	"moneyanalysis/internal/export"
	"moneyanalysis/internal/log"
	"moneyanalysis/internal/report"
	"moneyanalysis/internal/sheets"
	"moneyanalysis/internal/summary"
)

// Locator resolves the statement path of a month.
type Locator interface {
	Locate(month string) (string, error)
}

// Reporter writes the text reports and the insights summary.
type Reporter interface {
	WriteMonth(ctx context.Context, ds *core.Dataset) (core.PeriodReport, error)
	WriteYear(ctx context.Context, ds *core.Dataset) (core.PeriodReport, error)
	WriteInsights(ctx context.Context, ds *core.Dataset) (core.Insights, error)
}

// Visualizer renders the charts and large-transaction workbooks into dir.
type Visualizer interface {
	Render(ctx context.Context, dir string, ds *core.Dataset) error
}

// EventPublisher announces month outcomes.
type EventPublisher interface {
	PublishMonthProcessed(ctx context.Context, msg *amqp.MonthProcessedMessage) error
}

// Deps wires the analyzer. Reporter, Visuals, Events, Reports and Sinks are
// optional.
type Deps struct {
	Locator Locator
	Reader  sheets.StatementReader
	Months  sheets.MonthWriter
	Year    sheets.YearWriter

	Reporter Reporter
	Visuals  Visualizer
	Events   EventPublisher
	Reports  sheets.ReportPublisher
	Sinks    []export.Sink

	OutputDir string
	Logger    *log.Logger
}

// MonthResult is the outcome of one month.
type MonthResult struct {
	Month     string
	State     core.MonthState
	Status    core.MonthStatus
	Err       error
	DateErr   *core.DateParseError
	Ambiguous []int
	Path      string
	Dataset   *core.Dataset
	Summaries core.Summaries
	Report    *core.PeriodReport
	Took      time.Duration
}

// YearResult is the outcome of a run over several months.
type YearResult struct {
	RunID     string
	Months    []MonthResult
	Processed int
	Skipped   int
	Failed    int

	Dataset  *core.Dataset
	Path     string
	Report   *core.PeriodReport
	Insights *core.Insights
	Err      error
}

// Analyzer runs the monthly pipeline and the yearly roll-up.
type Analyzer struct {
	deps   Deps
	logger *log.Logger
	events *log.StructuredLogger
	newID  func() string
	now    func() time.Time
}

// NewAnalyzer creates an analyzer from deps.
func NewAnalyzer(deps Deps) (*Analyzer, error) {
	if deps.Locator == nil || deps.Reader == nil || deps.Months == nil || deps.Year == nil {
		return nil, errors.New("analyzer requires a locator, a reader and month and year writers")
	}
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	logger := deps.Logger.WithComponent(log.ComponentAnalyzer)
	return &Analyzer{
		deps:   deps,
		logger: logger,
		events: log.NewStructuredLogger(logger),
		newID:  func() string { return uuid.NewString() },
		now:    time.Now,
	}, nil
}

// AnalyzeYear processes months in order and writes the roll-up when at least
// one month succeeded. Cancellation is honoured between months; months not
// reached are left out of the result and the roll-up is skipped.
func (a *Analyzer) AnalyzeYear(ctx context.Context, months []string) YearResult {
	if len(months) == 0 {
		months = core.DefaultMonths
	}
	res := YearResult{RunID: a.newID()}
	a.logger.InfoContext(ctx, "Starting analysis", log.FieldRunID, res.RunID, "months", strings.Join(months, ","))

	var parts []*core.Dataset
	var processed []string
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		mr := a.AnalyzeMonth(ctx, m)
		res.Months = append(res.Months, mr)
		switch mr.Status {
		case core.StatusSuccess:
			res.Processed++
			parts = append(parts, mr.Dataset)
			processed = append(processed, mr.Month)
		case core.StatusSkipped:
			res.Skipped++
		default:
			res.Failed++
		}
		a.publishEvent(ctx, res.RunID, mr)
	}

	defer a.events.LogRunSummary(ctx, res.RunID, res.Processed, res.Skipped, res.Failed)
	if res.Err != nil {
		a.logger.WarnContext(ctx, "Run cancelled", log.FieldError, res.Err)
		return res
	}
	if len(parts) == 0 {
		if res.Failed > 0 {
			res.Err = core.ErrNoMonthsProcessed
		}
		a.logger.WarnContext(ctx, "No month processed, skipping yearly roll-up")
		return res
	}

	if err := a.rollUp(ctx, &res, processed, parts); err != nil {
		res.Err = err
	}
	return res
}

// AnalyzeMonth runs one month through load, enrich, aggregate and write.
// It never panics on bad input; the outcome is carried by the result.
func (a *Analyzer) AnalyzeMonth(ctx context.Context, month string) (res MonthResult) {
	month = strings.ToUpper(strings.TrimSpace(month))
	start := time.Now()
	res = MonthResult{Month: month, State: core.StateNotStarted}
	defer func() {
		res.Took = time.Since(start)
		a.events.LogMonthDone(ctx, month, string(res.Status), res.Dataset.Len(), res.Took, res.Err)
	}()

	path, err := a.deps.Locator.Locate(month)
	if err != nil {
		var missing *core.MissingInputError
		if errors.As(err, &missing) {
			res.Status, res.Err = core.StatusSkipped, err
			return res
		}
		a.advance(&res, core.StateLoading)
		return a.fail(&res, err)
	}
	res.Path = path

	if !a.advance(&res, core.StateLoading) {
		return res
	}
	ds, err := a.deps.Reader.Read(ctx, month, path)
	if err != nil {
		var missing *core.MissingInputError
		if errors.As(err, &missing) {
			res.Status, res.Err = core.StatusSkipped, err
			return res
		}
		return a.fail(&res, fmt.Errorf("load %s: %w", month, err))
	}
	if !a.advance(&res, core.StateLoaded) {
		return res
	}
	res.Dataset = ds
	if len(ds.InvalidDates) > 0 {
		res.DateErr = &core.DateParseError{Month: month, Rows: ds.InvalidDates}
		a.logger.WarnContext(ctx, "Invalid dates found", log.FieldMonth, month, log.FieldRows, len(ds.InvalidDates), log.FieldError, res.DateErr)
	}

	if !a.advance(&res, core.StateEnriching) {
		return res
	}
	res.Ambiguous = classify.Annotate(ds)
	if len(res.Ambiguous) > 0 {
		a.logger.WarnContext(ctx, "Rows carry both deposit and withdrawal, typed by withdrawal",
			log.FieldMonth, month, "row_numbers", res.Ambiguous)
	}
	cashflow.Accumulate(ds)
	cashflow.Format(ds)

	if !a.advance(&res, core.StateAggregating) {
		return res
	}
	res.Summaries = summary.Build(ds)

	if !a.advance(&res, core.StateWriting) {
		return res
	}
	out, err := a.deps.Months.WriteMonth(ctx, ds, res.Summaries)
	if err != nil {
		return a.fail(&res, err)
	}
	a.logger.InfoContext(ctx, "Month workbook written", log.FieldMonth, month, log.FieldPath, out)

	res.Report = a.monthOutputs(ctx, ds)

	if !a.advance(&res, core.StateDone) {
		return res
	}
	res.Status = core.StatusSuccess
	return res
}

// monthOutputs produces the text report and the visuals of one month. They
// write to distinct files; failures are logged and never fail the month.
func (a *Analyzer) monthOutputs(ctx context.Context, ds *core.Dataset) *core.PeriodReport {
	var (
		rep  core.PeriodReport
		errs [2]error
		g    errgroup.Group
	)
	if a.deps.Reporter != nil {
		g.Go(func() error {
			rep, errs[0] = a.deps.Reporter.WriteMonth(ctx, ds)
			return errs[0]
		})
	}
	if a.deps.Visuals != nil {
		dir := filepath.Join(a.deps.OutputDir, ds.Month, report.DirName)
		g.Go(func() error {
			errs[1] = a.deps.Visuals.Render(ctx, dir, ds)
			return errs[1]
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs[:]...); err != nil {
		a.logger.WarnContext(ctx, "Month reporting failed", log.FieldMonth, ds.Month, log.FieldError, err)
	}
	if a.deps.Reporter == nil || errs[0] != nil {
		return nil
	}
	a.publishReport(ctx, rep)
	return &rep
}

func (a *Analyzer) rollUp(ctx context.Context, res *YearResult, months []string, parts []*core.Dataset) error {
	ds := core.Concat(report.YearPeriod, parts)
	res.Dataset = ds

	path, err := a.deps.Year.WriteYear(ctx, ds)
	if err != nil {
		a.logger.ErrorContext(ctx, "Yearly workbook failed", log.FieldError, err)
		return fmt.Errorf("write yearly workbook: %w", err)
	}
	res.Path = path
	a.logger.InfoContext(ctx, "Yearly workbook written", log.FieldPath, path, log.FieldRows, ds.Len())

	var (
		rep  core.PeriodReport
		ins  core.Insights
		errs [3]error
		g    errgroup.Group
	)
	if a.deps.Reporter != nil {
		g.Go(func() error {
			rep, errs[0] = a.deps.Reporter.WriteYear(ctx, ds)
			return errs[0]
		})
		g.Go(func() error {
			ins, errs[1] = a.deps.Reporter.WriteInsights(ctx, ds)
			return errs[1]
		})
	}
	if a.deps.Visuals != nil {
		dir := filepath.Join(a.deps.OutputDir, report.DirName)
		g.Go(func() error {
			errs[2] = a.deps.Visuals.Render(ctx, dir, ds)
			return errs[2]
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs[:]...); err != nil {
		a.logger.WarnContext(ctx, "Yearly reporting failed", log.FieldError, err)
	}
	if a.deps.Reporter != nil {
		if errs[0] == nil {
			res.Report = &rep
			a.publishReport(ctx, rep)
		}
		if errs[1] == nil {
			res.Insights = &ins
		}
	}

	a.export(ctx, export.Batch{
		RunID:       res.RunID,
		GeneratedAt: a.now(),
		Months:      months,
		Dataset:     ds,
		Reports:     periodReports(res),
	})
	return nil
}

func (a *Analyzer) export(ctx context.Context, b export.Batch) {
	for _, s := range a.deps.Sinks {
		if err := s.Export(ctx, b); err != nil {
			a.logger.WarnContext(ctx, "Export failed", log.FieldBackend, s.Name(), log.FieldError, err)
			continue
		}
		a.logger.InfoContext(ctx, "Exported", log.FieldBackend, s.Name(), log.FieldRows, b.Dataset.Len())
	}
}

func (a *Analyzer) publishReport(ctx context.Context, p core.PeriodReport) {
	if a.deps.Reports == nil {
		return
	}
	ref, err := a.deps.Reports.PublishReport(ctx, p)
	if err != nil {
		a.logger.WarnContext(ctx, "Failed to publish report row", log.FieldMonth, p.Period, log.FieldError, err)
		return
	}
	a.logger.DebugContext(ctx, "Report row published", log.FieldMonth, p.Period, log.FieldSheetsRef, ref)
}

func (a *Analyzer) publishEvent(ctx context.Context, runID string, mr MonthResult) {
	if a.deps.Events == nil {
		return
	}
	msg := amqp.NewMonthProcessedMessage(runID, mr.Month, string(mr.Status), mr.Dataset.Len(), mr.Err)
	if err := a.deps.Events.PublishMonthProcessed(ctx, msg); err != nil {
		a.logger.WarnContext(ctx, "Failed to publish month event", log.FieldMonth, mr.Month, log.FieldError, err)
	}
}

func (a *Analyzer) advance(res *MonthResult, to core.MonthState) bool {
	next, err := res.State.Next(to)
	if err != nil {
		a.fail(res, err)
		return false
	}
	res.State = next
	return true
}

func (a *Analyzer) fail(res *MonthResult, err error) MonthResult {
	if res.State != core.StateNotStarted && !res.State.Terminal() {
		res.State = core.StateFailed
	}
	res.Status, res.Err = core.StatusFailed, err
	return *res
}

func periodReports(res *YearResult) []core.PeriodReport {
	var out []core.PeriodReport
	for _, m := range res.Months {
		if m.Report != nil {
			out = append(out, *m.Report)
		}
	}
	if res.Report != nil {
		out = append(out, *res.Report)
	}
	return out
}
