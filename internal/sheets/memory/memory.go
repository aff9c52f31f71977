package memory

import (
	"context"
	"fmt"
	"sync"

	"moneyanalysis/internal/core"
	ports "moneyanalysis/internal/sheets"
)

var (
	_ ports.StatementReader = (*Store)(nil)
	_ ports.MonthWriter     = (*Store)(nil)
	_ ports.YearWriter      = (*Store)(nil)
	_ ports.ReportPublisher = (*Store)(nil)
)

// Store keeps statements and written outputs in memory.
type Store struct {
	mu         sync.Mutex
	statements map[string]*core.Dataset
	months     map[string]MonthWrite
	order      []string
	year       *core.Dataset
	reports    []core.PeriodReport

	// FailWrite makes WriteMonth fail for the listed months.
	FailWrite map[string]error
}

// MonthWrite records one WriteMonth call.
type MonthWrite struct {
	Dataset   *core.Dataset
	Summaries core.Summaries
}

func New() *Store {
	return &Store{
		statements: map[string]*core.Dataset{},
		months:     map[string]MonthWrite{},
		FailWrite:  map[string]error{},
	}
}

// Put registers the statement returned for month.
func (s *Store) Put(month string, ds *core.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[month] = ds
}

// Read returns a copy of the registered statement so the pipeline can enrich
// it without touching the fixture.
func (s *Store) Read(_ context.Context, month, path string) (*core.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.statements[month]
	if !ok {
		return nil, &core.MissingInputError{Month: month, Path: path}
	}
	cp := *ds
	cp.Month = month
	cp.Source = path
	cp.Transactions = append([]core.Transaction(nil), ds.Transactions...)
	return &cp, nil
}

func (s *Store) WriteMonth(_ context.Context, ds *core.Dataset, sum core.Summaries) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.FailWrite[ds.Month]; ok {
		return "", &core.WriteError{Month: ds.Month, Path: "mem:" + ds.Month, Err: err}
	}
	s.months[ds.Month] = MonthWrite{Dataset: ds, Summaries: sum}
	s.order = append(s.order, ds.Month)
	return fmt.Sprintf("mem:%s", ds.Month), nil
}

func (s *Store) WriteYear(_ context.Context, ds *core.Dataset) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.year = ds
	return "mem:year", nil
}

// PublishReport stores the report and returns a synthetic row reference.
func (s *Store) PublishReport(_ context.Context, r core.PeriodReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Month returns what was written for month.
func (s *Store) Month(month string) (MonthWrite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.months[month]
	return w, ok
}

// Written returns months in write order.
func (s *Store) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Year returns the combined dataset, or nil when none was written.
func (s *Store) Year() *core.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.year
}

// Reports returns the published reports.
func (s *Store) Reports() []core.PeriodReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PeriodReport(nil), s.reports...)
}

// Locate returns a pseudo path for registered months and a
// *core.MissingInputError otherwise.
func (s *Store) Locate(month string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := "mem://" + month
	if _, ok := s.statements[month]; !ok {
		return "", &core.MissingInputError{Month: month, Path: p}
	}
	return p, nil
}
