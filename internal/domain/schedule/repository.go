// internal/domain/schedule/repository.go
package schedule

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving schedules.
// Lookups of a missing id return ErrNotFound.
type Repository interface {
	Create(ctx context.Context, in Input) (*Schedule, error)
	GetByID(ctx context.Context, id int64) (*Schedule, error)
	Update(ctx context.Context, id int64, in Input) (*Schedule, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*Schedule, error)
	// ListByRange returns schedules whose anchor falls in [start, end).
	ListByRange(ctx context.Context, start, end time.Time) ([]*Schedule, error)
}
