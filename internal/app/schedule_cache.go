// internal/app/schedule_cache.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"
)

var ErrCacheRefresh = errors.New("failed to refresh schedule cache")

// ScheduleLoader is the part of the backing store the cache reads from.
type ScheduleLoader interface {
	ListAll(ctx context.Context) ([]*schedule.Schedule, error)
}

// SnapshotSource hands out point-in-time copies of all schedules.
type SnapshotSource interface {
	Snapshot() []schedule.Schedule
}

// ScheduleCache holds the in-memory copy of every schedule.
//
// Contents are only ever replaced wholesale. Refresh calls are serialized by
// refreshMu and read the store without holding mu, so readers wait at most for
// the slice header swap.
type ScheduleCache struct {
	refreshMu sync.Mutex

	mu        sync.RWMutex
	schedules []schedule.Schedule
	loadedAt  time.Time
}

func NewScheduleCache() *ScheduleCache {
	return &ScheduleCache{schedules: []schedule.Schedule{}}
}

// Refresh loads every schedule from loader and installs them. On error the
// previous contents stay in place.
func (c *ScheduleCache) Refresh(ctx context.Context, loader ScheduleLoader) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	loaded, err := loader.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCacheRefresh, err)
	}

	next := make([]schedule.Schedule, 0, len(loaded))
	for _, s := range loaded {
		if s == nil {
			continue
		}
		next = append(next, *s)
	}

	c.mu.Lock()
	c.schedules = next
	c.loadedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the installed schedules in store order.
func (c *ScheduleCache) Snapshot() []schedule.Schedule {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]schedule.Schedule, len(c.schedules))
	copy(out, c.schedules)
	return out
}

func (c *ScheduleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schedules)
}

// LoadedAt is the time of the last successful refresh, zero if none.
func (c *ScheduleCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
