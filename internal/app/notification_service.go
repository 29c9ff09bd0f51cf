// internal/app/notification_service.go
package app

import (
	"context"
	"sync"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

const defaultPublishTimeout = 5 * time.Second

// NotificationOptions tunes the per-tick behaviour of NotificationService.
type NotificationOptions struct {
	// PublishTimeout bounds a single sink publish. Zero means 5s.
	PublishTimeout time.Duration
	// Dedup skips a schedule already delivered for the same second in the
	// previous tick. Off by default: delivery is best effort.
	Dedup bool
}

// NotificationService evaluates the cached schedules once per tick and hands
// the due ones to a DeliverySink as a single batch.
type NotificationService struct {
	source SnapshotSource
	sink   DeliverySink
	logger *logrus.Entry
	opts   NotificationOptions

	mu        sync.Mutex
	lastFired map[int64]int64 // schedule id -> unix second, previous tick only
}

func NewNotificationService(source SnapshotSource, sink DeliverySink, logger *logrus.Entry, opts NotificationOptions) *NotificationService {
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	return &NotificationService{
		source:    source,
		sink:      sink,
		logger:    logger,
		opts:      opts,
		lastFired: map[int64]int64{},
	}
}

// DueAt returns the schedules from one snapshot that should notify at now,
// in snapshot order.
func (s *NotificationService) DueAt(now time.Time) []schedule.Schedule {
	return selectDue(s.source.Snapshot(), now)
}

func selectDue(snapshot []schedule.Schedule, now time.Time) []schedule.Schedule {
	var due []schedule.Schedule
	for _, sc := range snapshot {
		if sc.Remind && schedule.IsDue(sc, now) {
			due = append(due, sc)
		}
	}
	return due
}

// Tick runs one evaluation against now and publishes the due batch. It
// returns the number of schedules handed to the sink. Delivery errors are
// logged and never propagate. Sinks that may block should be wrapped in a
// QueuedSink so the tick returns promptly.
func (s *NotificationService) Tick(ctx context.Context, now time.Time) int {
	if ctx.Err() != nil {
		return 0
	}

	due := s.DueAt(now)
	if s.opts.Dedup {
		due = s.dropRepeats(due, now)
	}
	if len(due) == 0 {
		return 0
	}

	ids := make([]int64, len(due))
	for i, sc := range due {
		ids[i] = sc.ID
	}
	log := s.logger.WithFields(logrus.Fields{
		"tick":         now.Format(time.RFC3339),
		"schedule_ids": ids,
	})

	pubCtx, cancel := context.WithTimeout(ctx, s.opts.PublishTimeout)
	defer cancel()
	if err := s.sink.Publish(pubCtx, due); err != nil {
		log.WithError(err).Error("Failed to deliver due schedules")
		return len(due)
	}
	log.Info("Delivered due schedules")
	return len(due)
}

// dropRepeats removes schedules that were already delivered for the same
// second by the previous tick, then remembers this tick's batch.
func (s *NotificationService) dropRepeats(due []schedule.Schedule, now time.Time) []schedule.Schedule {
	sec := now.Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := due[:0]
	fired := make(map[int64]int64, len(due))
	for _, sc := range due {
		if prev, ok := s.lastFired[sc.ID]; ok && prev == sec {
			s.logger.WithField("schedule_id", sc.ID).Debug("Skipping duplicate delivery for the same second")
			fired[sc.ID] = sec
			continue
		}
		fired[sc.ID] = sec
		kept = append(kept, sc)
	}
	s.lastFired = fired
	return kept
}
