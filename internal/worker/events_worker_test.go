package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyanalysis/internal/amqp"
)

type fakeConsumer struct {
	batches    [][]*amqp.MonthProcessedMessage
	reconnects int
	cancel     context.CancelFunc
}

func (f *fakeConsumer) ConsumeMonthProcessed(ctx context.Context, handler func(*amqp.MonthProcessedMessage) error) error {
	if len(f.batches) == 0 {
		f.cancel()
		<-ctx.Done()
		return ctx.Err()
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	for _, m := range batch {
		if err := handler(m); err != nil {
			return err
		}
	}
	return errors.New("connection reset")
}

func (f *fakeConsumer) Reconnect(context.Context) error {
	f.reconnects++
	return nil
}

func TestHandleMonthProcessed(t *testing.T) {
	w := NewEventsWorker(nil, nil)

	jan := amqp.NewMonthProcessedMessage("run-1", "JAN", "success", 10, nil)
	feb := amqp.NewMonthProcessedMessage("run-1", "FEB", "skipped", 0, errors.New("input for FEB not found"))
	mar := amqp.NewMonthProcessedMessage("run-1", "MAR", "failed", 0, errors.New("missing columns"))
	for _, m := range []*amqp.MonthProcessedMessage{jan, feb, mar, jan} {
		require.NoError(t, w.HandleMonthProcessed(m))
	}
	require.NoError(t, w.HandleMonthProcessed(&amqp.MonthProcessedMessage{Month: "APR"}))

	stats, ok := w.Stats("run-1")
	require.True(t, ok)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 10, stats.Rows)
	assert.Equal(t, []string{"JAN"}, stats.Months)

	_, ok = w.Stats("unknown")
	assert.False(t, ok)
}

func TestRunsOrderedByLastSeen(t *testing.T) {
	w := NewEventsWorker(nil, nil)
	old := amqp.NewMonthProcessedMessage("old", "JAN", "success", 1, nil)
	old.Timestamp = time.Now().Add(-time.Hour)
	recent := amqp.NewMonthProcessedMessage("recent", "JAN", "success", 1, nil)

	require.NoError(t, w.HandleMonthProcessed(old))
	require.NoError(t, w.HandleMonthProcessed(recent))

	assert.Equal(t, []string{"recent", "old"}, w.Runs())
}

func TestRunReconnectsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer := &fakeConsumer{
		cancel: cancel,
		batches: [][]*amqp.MonthProcessedMessage{
			{amqp.NewMonthProcessedMessage("run-1", "JAN", "success", 3, nil)},
			{amqp.NewMonthProcessedMessage("run-1", "FEB", "success", 4, nil)},
		},
	}
	w := NewEventsWorker(consumer, nil)

	require.NoError(t, w.Run(ctx))

	assert.Equal(t, 2, consumer.reconnects)
	stats, ok := w.Stats("run-1")
	require.True(t, ok)
	assert.Equal(t, 7, stats.Rows)
}
