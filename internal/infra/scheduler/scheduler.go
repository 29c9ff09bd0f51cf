package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Ticker is the periodic body run by the scheduler.
type Ticker interface {
	Tick(ctx context.Context, now time.Time) int
}

type Option func(*NotificationScheduler)

// WithClock replaces time.Now as the source of each tick's instant.
func WithClock(clock func() time.Time) Option {
	return func(s *NotificationScheduler) { s.clock = clock }
}

// NotificationScheduler drives a Ticker from a cron spec with a seconds field
// ("* * * * * *" is once per second).
type NotificationScheduler struct {
	cronEngine *cron.Cron
	ticker     Ticker
	logger     *logrus.Entry
	spec       string
	location   *time.Location
	clock      func() time.Time

	mu      sync.Mutex
	entryID cron.EntryID
	running bool
}

func NewNotificationScheduler(ticker Ticker, logger *logrus.Entry, spec string, loc *time.Location, opts ...Option) *NotificationScheduler {
	if loc == nil {
		loc = time.Local
	}
	cronLogger := cron.PrintfLogger(logger)
	s := &NotificationScheduler{
		cronEngine: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			// A stalled tick must not pile up behind itself.
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		ticker:   ticker,
		logger:   logger,
		spec:     spec,
		location: loc,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the tick job and starts the cron engine. Ticks stop firing
// once ctx is cancelled, even before Stop is called.
func (s *NotificationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.logger.WithField("spec", s.spec).Info("Starting notification scheduler...")
	id, err := s.cronEngine.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.ticker.Tick(ctx, s.clock().In(s.location))
	})
	if err != nil {
		return fmt.Errorf("could not add notification tick job %q: %w", s.spec, err)
	}
	s.entryID = id
	s.running = true

	s.cronEngine.Start()
	s.logger.Info("Notification scheduler started.")
	return nil
}

// Stop halts the cron engine and waits for an in-flight tick to return.
func (s *NotificationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.cronEngine.Remove(s.entryID)
	s.running = false
	s.logger.Info("Notification scheduler gracefully stopped.")
}

func (s *NotificationScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Next reports when the next tick is scheduled, zero if not running.
func (s *NotificationScheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.cronEngine.Entry(s.entryID).Next
}
