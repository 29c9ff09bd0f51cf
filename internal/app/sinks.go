package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// DeliverySink receives batches of schedules due at the same instant.
type DeliverySink interface {
	Publish(ctx context.Context, due []schedule.Schedule) error
}

// LogSink writes each batch as the "notify" event payload to the log.
type LogSink struct {
	logger *logrus.Entry
}

func NewLogSink(logger *logrus.Entry) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Publish(_ context.Context, due []schedule.Schedule) error {
	payload := make([]schedule.Payload, len(due))
	for i, sc := range due {
		payload[i] = sc.Payload()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	l.logger.WithFields(logrus.Fields{
		"event": "notify",
		"count": len(due),
	}).Info(string(body))
	return nil
}

// MultiSink publishes every batch to all of its sinks, even when one fails.
type MultiSink []DeliverySink

func (m MultiSink) Publish(ctx context.Context, due []schedule.Schedule) error {
	var errs error
	for _, sink := range m {
		errs = multierr.Append(errs, sink.Publish(ctx, due))
	}
	return errs
}

// ErrDeliveryQueueFull is returned by QueuedSink when a batch is dropped.
var ErrDeliveryQueueFull = errors.New("delivery queue is full")

// ErrDeliveryQueueClosed is returned by QueuedSink after Close.
var ErrDeliveryQueueClosed = errors.New("delivery queue is closed")

const defaultDeliveryQueueSize = 16

// QueuedSink hands batches to a background worker so Publish never waits on
// the wrapped sink. When the queue is full the batch is dropped.
type QueuedSink struct {
	next    DeliverySink
	logger  *logrus.Entry
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan []schedule.Schedule
	done   chan struct{}
}

// NewQueuedSink starts the delivery worker. Each batch gets its own timeout,
// independent of the caller's context.
func NewQueuedSink(next DeliverySink, logger *logrus.Entry, timeout time.Duration, size int) *QueuedSink {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	if size <= 0 {
		size = defaultDeliveryQueueSize
	}
	q := &QueuedSink{
		next:    next,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan []schedule.Schedule, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *QueuedSink) Publish(_ context.Context, due []schedule.Schedule) error {
	batch := make([]schedule.Schedule, len(due))
	copy(batch, due)

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrDeliveryQueueClosed
	}
	select {
	case q.queue <- batch:
		return nil
	default:
		return fmt.Errorf("%w: dropped %d schedules", ErrDeliveryQueueFull, len(batch))
	}
}

// Close stops accepting batches and waits until the queued ones are delivered.
func (q *QueuedSink) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.queue)
	}
	q.mu.Unlock()
	<-q.done
}

func (q *QueuedSink) run() {
	defer close(q.done)
	for batch := range q.queue {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.Publish(ctx, batch); err != nil {
			q.logger.WithError(err).WithField("count", len(batch)).Error("Failed to deliver queued schedules")
		}
		cancel()
	}
}
