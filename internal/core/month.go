package core

import "fmt"

// DefaultMonths are the month labels processed when none are requested.
var DefaultMonths = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// MonthState tracks a month through the pipeline.
type MonthState string

const (
	StateNotStarted  MonthState = "not_started"
	StateLoading     MonthState = "loading"
	StateLoaded      MonthState = "loaded"
	StateEnriching   MonthState = "enriching"
	StateAggregating MonthState = "aggregating"
	StateWriting     MonthState = "writing"
	StateDone        MonthState = "done"
	StateFailed      MonthState = "failed"
)

var monthTransitions = map[MonthState][]MonthState{
	StateNotStarted:  {StateLoading},
	StateLoading:     {StateLoaded, StateFailed},
	StateLoaded:      {StateEnriching, StateFailed},
	StateEnriching:   {StateAggregating, StateFailed},
	StateAggregating: {StateWriting, StateFailed},
	StateWriting:     {StateDone, StateFailed},
}

// Terminal reports whether no further transition is possible.
func (s MonthState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Next validates and returns the transition s -> to.
func (s MonthState) Next(to MonthState) (MonthState, error) {
	for _, allowed := range monthTransitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("invalid month transition %s -> %s", s, to)
}

// MonthStatus is the outcome reported for one month of a run.
type MonthStatus string

const (
	StatusSuccess MonthStatus = "success"
	StatusSkipped MonthStatus = "skipped"
	StatusFailed  MonthStatus = "failed"
)
