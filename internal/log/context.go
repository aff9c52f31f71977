package log

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides run-level logging helpers
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogMonthDone logs the outcome of one month. Failures are logged at error
// level, skips at warn level.
func (sl *StructuredLogger) LogMonthDone(ctx context.Context, month, status string, rows int, took time.Duration, err error) {
	level := slog.LevelInfo
	switch status {
	case "skipped":
		level = slog.LevelWarn
	case "failed":
		level = slog.LevelError
	}
	fields := NewFields().
		WithMonth(month).
		WithError(err).
		ToSlice()
	fields = append(fields, FieldStatus, status, FieldRows, rows, FieldDuration, took.Milliseconds())

	sl.logger.Logger.Log(ctx, level, "Month processed", append([]any{FieldComponent, sl.logger.component}, fields...)...)
}

// LogRunSummary logs processed, skipped and failed month counts.
func (sl *StructuredLogger) LogRunSummary(ctx context.Context, runID string, processed, skipped, failed int) {
	fields := NewFields().
		WithRunID(runID).
		WithRunSummary(processed, skipped, failed)

	sl.logger.InfoContext(ctx, "Run completed", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
