// internal/domain/schedule/schedule.go
package schedule

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("schedule not found")
var ErrInvalidRepeat = errors.New("invalid repeat kind")
var ErrMissingAnchor = errors.New("schedule date is required")

// Repeat is the recurrence kind of a schedule.
type Repeat string

const (
	RepeatOnce    Repeat = "ONCE"
	RepeatDaily   Repeat = "DAILY"
	RepeatWeekly  Repeat = "WEEKLY"
	RepeatMonthly Repeat = "MONTHLY"
	RepeatYearly  Repeat = "YEARLY"
)

// Repeats lists every recurrence kind in display order.
var Repeats = []Repeat{RepeatOnce, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly}

func (r Repeat) Valid() bool {
	switch r {
	case RepeatOnce, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	default:
		return false
	}
}

// ParseRepeat accepts a recurrence kind in any letter case ("daily", "Daily", "DAILY").
func ParseRepeat(s string) (Repeat, error) {
	r := Repeat(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRepeat, s)
	}
	return r, nil
}

// Schedule is a user-defined reminder.
// Anchor is an absolute instant; its wall-clock fields in the evaluation
// location form the recurrence template.
type Schedule struct {
	ID      int64
	Content sql.NullString // optional label
	Anchor  time.Time
	Remind  bool
	Repeat  Repeat
}

// Input carries the mutable fields of a schedule for create and update.
type Input struct {
	Content sql.NullString
	Anchor  time.Time
	Remind  bool
	Repeat  Repeat
}

func (in Input) Validate() error {
	if in.Anchor.IsZero() {
		return ErrMissingAnchor
	}
	if !in.Repeat.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeat, in.Repeat)
	}
	return nil
}

// Payload is the event shape handed to delivery sinks.
type Payload struct {
	ID      int64   `json:"id"`
	Content *string `json:"content"`
	Date    int64   `json:"date"` // epoch seconds
	Remind  bool    `json:"remind"`
	Repeat  Repeat  `json:"repeat"`
}

func (s Schedule) Payload() Payload {
	p := Payload{
		ID:     s.ID,
		Date:   s.Anchor.Unix(),
		Remind: s.Remind,
		Repeat: s.Repeat,
	}
	if s.Content.Valid {
		content := s.Content.String
		p.Content = &content
	}
	return p
}

// Label returns the content, or a placeholder for schedules without one.
func (s Schedule) Label() string {
	if s.Content.Valid && strings.TrimSpace(s.Content.String) != "" {
		return s.Content.String
	}
	return "(no description)"
}
