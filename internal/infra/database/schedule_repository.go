// internal/infra/database/schedule_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"
)

const scheduleColumns = `id, content, date_ts, remind, repeat_kind`

// ScheduleRepository implements schedule.Repository over database/sql for
// both PostgreSQL and SQLite. Anchors are stored as UTC epoch seconds.
type ScheduleRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewScheduleRepository(db *sql.DB, dialect Dialect) *ScheduleRepository {
	return &ScheduleRepository{db: db, dialect: dialect}
}

// bind rewrites "?" markers into the dialect's placeholders.
func (r *ScheduleRepository) bind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString(r.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *ScheduleRepository) Create(ctx context.Context, in schedule.Input) (*schedule.Schedule, error) {
	query := r.bind(`INSERT INTO schedule (content, date_ts, remind, repeat_kind)
               VALUES (?, ?, ?, ?)
               RETURNING id`)
	s := &schedule.Schedule{
		Content: in.Content,
		Anchor:  toStored(in.Anchor),
		Remind:  in.Remind,
		Repeat:  in.Repeat,
	}
	err := r.db.QueryRowContext(ctx, query, s.Content, s.Anchor.Unix(), s.Remind, string(s.Repeat)).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("error creating schedule: %w", err)
	}
	return s, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*schedule.Schedule, error) {
	query := r.bind(`SELECT ` + scheduleColumns + ` FROM schedule WHERE id = ?`)
	s, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrNotFound
		}
		return nil, fmt.Errorf("error getting schedule by ID: %w", err)
	}
	return s, nil
}

func (r *ScheduleRepository) Update(ctx context.Context, id int64, in schedule.Input) (*schedule.Schedule, error) {
	query := r.bind(`UPDATE schedule
               SET content = ?, date_ts = ?, remind = ?, repeat_kind = ?
               WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, in.Content, toStored(in.Anchor).Unix(), in.Remind, string(in.Repeat), id)
	if err != nil {
		return nil, fmt.Errorf("error updating schedule: %w", err)
	}
	if err := expectRow(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.bind(`DELETE FROM schedule WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("error deleting schedule: %w", err)
	}
	return expectRow(res)
}

func (r *ScheduleRepository) ListAll(ctx context.Context) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying schedules: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *ScheduleRepository) ListByRange(ctx context.Context, start, end time.Time) ([]*schedule.Schedule, error) {
	query := r.bind(`SELECT ` + scheduleColumns + ` FROM schedule
               WHERE date_ts >= ? AND date_ts < ?
               ORDER BY date_ts, id`)
	rows, err := r.db.QueryContext(ctx, query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("error querying schedules by range: %w", err)
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*schedule.Schedule, error) {
	var (
		s      schedule.Schedule
		dateTS int64
		repeat string
	)
	if err := row.Scan(&s.ID, &s.Content, &dateTS, &s.Remind, &repeat); err != nil {
		return nil, err
	}
	s.Anchor = time.Unix(dateTS, 0).UTC()
	s.Repeat = schedule.Repeat(repeat)
	return &s, nil
}

// Helper to scan multiple rows
func scanSchedules(rows *sql.Rows) ([]*schedule.Schedule, error) {
	schedules := make([]*schedule.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}
	return schedules, nil
}

// toStored drops sub-second precision and the location, matching what a
// round trip through the table returns.
func toStored(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0).UTC()
}
