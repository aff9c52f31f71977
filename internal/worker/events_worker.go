package worker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"moneyanalysis/internal/amqp"
	"moneyanalysis/internal/core"
	"moneyanalysis/internal/log"
)

// Consumer is the part of the AMQP client the worker needs.
type Consumer interface {
	ConsumeMonthProcessed(ctx context.Context, handler func(*amqp.MonthProcessedMessage) error) error
	Reconnect(ctx context.Context) error
}

// RunStats tallies the month events received for one run.
type RunStats struct {
	RunID     string
	Processed int
	Skipped   int
	Failed    int
	Rows      int
	Months    []string
	LastSeen  time.Time
}

// EventsWorker follows month processed events and keeps a per-run tally.
type EventsWorker struct {
	consumer Consumer
	logger   *log.Logger

	mu   sync.Mutex
	runs map[string]*RunStats
	seen map[string]bool
}

func NewEventsWorker(consumer Consumer, logger *log.Logger) *EventsWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &EventsWorker{
		consumer: consumer,
		logger:   logger.WithComponent(log.ComponentAMQP),
		runs:     map[string]*RunStats{},
		seen:     map[string]bool{},
	}
}

// HandleMonthProcessed records one event. Redelivered messages are counted
// once. Invalid messages are dropped rather than requeued.
func (w *EventsWorker) HandleMonthProcessed(msg *amqp.MonthProcessedMessage) error {
	ctx := context.Background()
	if err := msg.Validate(); err != nil {
		w.logger.WarnContext(ctx, "Dropping invalid month event", log.FieldError, err)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[msg.MessageID] {
		w.logger.DebugContext(ctx, "Duplicate month event", log.FieldMessageID, msg.MessageID)
		return nil
	}
	w.seen[msg.MessageID] = true

	stats, ok := w.runs[msg.RunID]
	if !ok {
		stats = &RunStats{RunID: msg.RunID}
		w.runs[msg.RunID] = stats
	}
	switch core.MonthStatus(msg.Status) {
	case core.StatusSuccess:
		stats.Processed++
		stats.Months = append(stats.Months, msg.Month)
	case core.StatusSkipped:
		stats.Skipped++
	default:
		stats.Failed++
	}
	stats.Rows += msg.Rows
	if msg.Timestamp.After(stats.LastSeen) {
		stats.LastSeen = msg.Timestamp
	}

	fields := log.NewFields().
		WithRunID(msg.RunID).
		WithMonth(msg.Month).
		WithRunSummary(stats.Processed, stats.Skipped, stats.Failed).
		ToSlice()
	fields = append(fields, log.FieldStatus, msg.Status, log.FieldRows, msg.Rows, log.FieldMessageID, msg.MessageID)
	if msg.Error != "" {
		fields = append(fields, log.FieldError, msg.Error)
	}
	w.logger.InfoContext(ctx, "Month event received", fields...)
	return nil
}

// Run consumes until ctx is done, reconnecting after a dropped connection.
func (w *EventsWorker) Run(ctx context.Context) error {
	for {
		err := w.consumer.ConsumeMonthProcessed(ctx, w.HandleMonthProcessed)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil
		}
		w.logger.WarnContext(ctx, "Message consumption stopped, reconnecting", log.FieldError, err)
		if err := w.consumer.Reconnect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Stats returns the tally of runID.
func (w *EventsWorker) Stats(runID string) (RunStats, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.runs[runID]
	if !ok {
		return RunStats{}, false
	}
	out := *s
	out.Months = append([]string(nil), s.Months...)
	return out, true
}

// Runs lists known run IDs, most recently seen first.
func (w *EventsWorker) Runs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(w.runs))
	for id := range w.runs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return w.runs[ids[i]].LastSeen.After(w.runs[ids[j]].LastSeen)
	})
	return ids
}
