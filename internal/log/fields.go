package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldMonth      = "month"
	FieldPath       = "path"
	FieldRows       = "rows"
	FieldState      = "state"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBackend    = "backend"
	FieldProcessed  = "processed"
	FieldSkipped    = "skipped"
	FieldFailed     = "failed"
	FieldSheetsRef  = "sheets_ref"
	FieldMessageID  = "message_id"
	FieldSchedule   = "schedule"
	FieldTimeZone   = "time_zone"
	FieldRecordKind = "record_kind"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStatement = "statement"
	ComponentClassify  = "classify"
	ComponentAnalyzer  = "analyzer"
	ComponentSheets    = "sheets"
	ComponentReport    = "report"
	ComponentVisual    = "visual"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentExport    = "export"
	ComponentBackend   = "backend"
	ComponentScheduler = "scheduler"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpEnrich   = "enrich"
	OpSummary  = "summarize"
	OpWrite    = "write"
	OpPublish  = "publish"
	OpExport   = "export"
	OpValidate = "validate"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRunID adds the run identifier
func (f LogFields) WithRunID(runID string) LogFields {
	f[FieldRunID] = runID
	return f
}

// WithMonth adds the month label
func (f LogFields) WithMonth(month string) LogFields {
	f[FieldMonth] = month
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRunSummary adds the per-run month counters.
func (f LogFields) WithRunSummary(processed, skipped, failed int) LogFields {
	f[FieldProcessed] = processed
	f[FieldSkipped] = skipped
	f[FieldFailed] = failed
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
