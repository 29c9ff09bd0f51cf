package telegram

import (
	"fmt"
	"strings"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"
)

const (
	dateLayout        = "2006-01-02"
	timeLayout        = "15:04:05"
	timeLayoutShort   = "15:04"
	silentFlag        = "-silent"
	monthArgLayout    = "2006-01"
	maxMessageBytes   = 4000
	truncatedListNote = "\n…"
)

// parseScheduleArgs reads "<date> <time> <repeat> [-silent] [text...]" in loc.
func parseScheduleArgs(args []string, loc *time.Location) (schedule.Input, error) {
	var in schedule.Input
	if len(args) < 3 {
		return in, fmt.Errorf("expected <YYYY-MM-DD> <HH:MM[:SS]> <repeat> [%s] [text]", silentFlag)
	}

	anchor, err := parseAnchor(args[0], args[1], loc)
	if err != nil {
		return in, err
	}

	repeat, err := schedule.ParseRepeat(args[2])
	if err != nil {
		return in, err
	}

	rest := args[3:]
	in.Remind = true
	if len(rest) > 0 && strings.EqualFold(rest[0], silentFlag) {
		in.Remind = false
		rest = rest[1:]
	}
	if text := strings.TrimSpace(strings.Join(rest, " ")); text != "" {
		in.Content.String, in.Content.Valid = text, true
	}

	in.Anchor = anchor
	in.Repeat = repeat
	return in, nil
}

func parseAnchor(date, clock string, loc *time.Location) (time.Time, error) {
	layout := dateLayout + " " + timeLayout
	if strings.Count(clock, ":") == 1 {
		layout = dateLayout + " " + timeLayoutShort
	}
	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date or time %q %q", date, clock)
	}
	return t, nil
}

// parseMonthArg reads an optional "YYYY-MM" argument, defaulting to now's month.
func parseMonthArg(args []string, now time.Time) (int, time.Month, error) {
	if len(args) == 0 {
		return now.Year(), now.Month(), nil
	}
	t, err := time.ParseInLocation(monthArgLayout, args[0], now.Location())
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", args[0])
	}
	return t.Year(), t.Month(), nil
}

// formatSchedule renders one schedule line with its anchor shown in loc.
func formatSchedule(s schedule.Schedule, loc *time.Location) string {
	line := fmt.Sprintf("#%d %s %s: %s",
		s.ID,
		s.Anchor.In(loc).Format(dateLayout+" "+timeLayout),
		strings.ToLower(string(s.Repeat)),
		s.Label(),
	)
	if !s.Remind {
		line += " (silent)"
	}
	return line
}

func formatScheduleList(title string, list []*schedule.Schedule, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(title)
	for _, s := range list {
		line := "\n" + formatSchedule(*s, loc)
		if b.Len()+len(line) > maxMessageBytes {
			b.WriteString(truncatedListNote)
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

// formatReminder renders a due batch as a single notification message.
func formatReminder(due []schedule.Schedule, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("⏰ Reminder")
	if len(due) > 1 {
		fmt.Fprintf(&b, " (%d)", len(due))
	}
	for _, s := range due {
		fmt.Fprintf(&b, "\n• %s [%s, #%d]",
			s.Label(),
			s.Anchor.In(loc).Format(timeLayoutShort),
			s.ID,
		)
	}
	return b.String()
}
