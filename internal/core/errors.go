package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrNoMonthsProcessed = errors.New("no month was processed successfully")
)

// MissingInputError reports a month whose folder or statement file is absent.
type MissingInputError struct {
	Month string
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input for %s not found: %s", e.Month, e.Path)
}

// SchemaError reports required columns absent from a statement.
type SchemaError struct {
	Month   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns in %s: %s", e.Month, strings.Join(e.Missing, ", "))
}

// DateParseError lists rows whose date could not be parsed. It never fails a month.
type DateParseError struct {
	Month string
	Rows  []int
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid dates found in %s: %d row(s)", e.Month, len(e.Rows))
}

// WriteError reports an output file that could not be produced.
type WriteError struct {
	Month string
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s output %s: %v", e.Month, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
