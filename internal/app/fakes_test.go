package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(l)
}

// memoryRepository is an in-memory schedule.Repository for service tests.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]schedule.Schedule

	listErr   error
	writeErr  error
	listCalls int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: map[int64]schedule.Schedule{}}
}

func (r *memoryRepository) Create(_ context.Context, in schedule.Input) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	r.nextID++
	s := schedule.Schedule{ID: r.nextID, Content: in.Content, Anchor: in.Anchor, Remind: in.Remind, Repeat: in.Repeat}
	r.items[s.ID] = s
	return &s, nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepository) Update(_ context.Context, id int64, in schedule.Input) (*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	if _, ok := r.items[id]; !ok {
		return nil, schedule.ErrNotFound
	}
	s := schedule.Schedule{ID: id, Content: in.Content, Anchor: in.Anchor, Remind: in.Remind, Repeat: in.Repeat}
	r.items[id] = s
	return &s, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	if _, ok := r.items[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRepository) ListAll(_ context.Context) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sortedLocked(func(schedule.Schedule) bool { return true }), nil
}

func (r *memoryRepository) ListByRange(_ context.Context, start, end time.Time) ([]*schedule.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sortedLocked(func(s schedule.Schedule) bool {
		return !s.Anchor.Before(start) && s.Anchor.Before(end)
	}), nil
}

func (r *memoryRepository) sortedLocked(keep func(schedule.Schedule) bool) []*schedule.Schedule {
	out := make([]*schedule.Schedule, 0, len(r.items))
	for _, s := range r.items {
		if keep(s) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// recordingSink remembers every published batch.
type recordingSink struct {
	mu      sync.Mutex
	batches [][]schedule.Schedule
	err     error
}

func (s *recordingSink) Publish(_ context.Context, due []schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]schedule.Schedule, len(due))
	copy(batch, due)
	s.batches = append(s.batches, batch)
	return s.err
}

func (s *recordingSink) Batches() [][]schedule.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]schedule.Schedule(nil), s.batches...)
}

// staticSource is a SnapshotSource over a fixed list.
type staticSource []schedule.Schedule

func (s staticSource) Snapshot() []schedule.Schedule {
	return append([]schedule.Schedule(nil), s...)
}

func ids(batch []schedule.Schedule) []int64 {
	out := make([]int64, len(batch))
	for i, s := range batch {
		out[i] = s.ID
	}
	return out
}
