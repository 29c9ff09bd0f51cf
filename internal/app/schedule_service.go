package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

// ScheduleService is the single write path for schedules. Every successful
// store mutation is followed by a synchronous cache refresh, so the notifier
// sees the change on its next tick without querying the store itself.
type ScheduleService struct {
	repo   schedule.Repository
	cache  *ScheduleCache
	logger *logrus.Entry
}

func NewScheduleService(repo schedule.Repository, cache *ScheduleCache, logger *logrus.Entry) *ScheduleService {
	return &ScheduleService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Create stores a new schedule and refreshes the cache. When only the refresh
// fails, the stored schedule is returned together with an ErrCacheRefresh error.
func (s *ScheduleService) Create(ctx context.Context, in schedule.Input) (*schedule.Schedule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"schedule_id": created.ID,
		"repeat":      created.Repeat,
		"date":        created.Anchor.Unix(),
	}).Info("Schedule created")

	if err := s.refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Update replaces every mutable field of schedule id and refreshes the cache.
// A refresh failure is reported the same way as in Create.
func (s *ScheduleService) Update(ctx context.Context, id int64, in schedule.Input) (*schedule.Schedule, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule %d: %w", id, err)
	}
	s.logger.WithField("schedule_id", id).Info("Schedule updated")

	if err := s.refresh(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// Delete removes schedule id and refreshes the cache. A missing id still
// refreshes, so a cache that missed an earlier delete catches up.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			_ = s.refresh(ctx)
		}
		return fmt.Errorf("failed to delete schedule %d: %w", id, err)
	}
	s.logger.WithField("schedule_id", id).Info("Schedule deleted")

	return s.refresh(ctx)
}

// Get reads one schedule straight from the store.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*schedule.Schedule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ScheduleService) ListAll(ctx context.Context) ([]*schedule.Schedule, error) {
	return s.repo.ListAll(ctx)
}

// ListByMonth returns schedules anchored within the calendar month in loc.
func (s *ScheduleService) ListByMonth(ctx context.Context, year int, month time.Month, loc *time.Location) ([]*schedule.Schedule, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	return s.repo.ListByRange(ctx, start, end)
}

// ListToday returns schedules anchored on now's calendar day in now's location.
func (s *ScheduleService) ListToday(ctx context.Context, now time.Time) ([]*schedule.Schedule, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)
	return s.repo.ListByRange(ctx, start, end)
}

// Reload refreshes the cache outside of a mutation, e.g. at startup.
func (s *ScheduleService) Reload(ctx context.Context) error {
	return s.refresh(ctx)
}

func (s *ScheduleService) refresh(ctx context.Context) error {
	if err := s.cache.Refresh(ctx, s.repo); err != nil {
		s.logger.WithError(err).Error("Schedule cache refresh failed, keeping previous contents")
		return err
	}
	s.logger.WithField("schedules", s.cache.Len()).Debug("Schedule cache refreshed")
	return nil
}
