package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"schedule_reminder_bot/internal/app"
	"schedule_reminder_bot/internal/domain/schedule"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgUnauthorized = "Error: you are not allowed to use this command."

// adminOnly rejects every sender except the configured admin.
func adminOnly(adminTelegramID int64, baseLogger *logrus.Entry) telebot.MiddlewareFunc {
	return func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if c.Sender() == nil || c.Sender().ID != adminTelegramID {
				fields := logrus.Fields{"command": c.Text()}
				if c.Sender() != nil {
					fields["sender_id"] = c.Sender().ID
				}
				baseLogger.WithFields(fields).Warn("Unauthorized access attempt")
				return c.Send(msgUnauthorized)
			}
			return next(c)
		}
	}
}

// RegisterScheduleHandlers registers the schedule commands. Mutations go
// through ScheduleService so the notification cache is refreshed on success.
func RegisterScheduleHandlers(
	ctx context.Context,
	b *telebot.Bot,
	svc *app.ScheduleService,
	cache *app.ScheduleCache,
	adminTelegramID int64,
	loc *time.Location,
	baseLogger *logrus.Entry,
) {
	admin := adminOnly(adminTelegramID, baseLogger)

	b.Handle("/add_schedule", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithField("handler", "/add_schedule")

		in, err := parseScheduleArgs(c.Args(), loc)
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Usage: /add_schedule <YYYY-MM-DD> <HH:MM[:SS]> <once|daily|weekly|monthly|yearly> [-silent] [text]\n" + err.Error())
		}

		created, err := svc.Create(ctx, in)
		if created == nil {
			handlerLogger.WithError(err).Error("Failed to add schedule")
			return c.Send(fmt.Sprintf("Could not add schedule: %s", err.Error()))
		}
		if err != nil {
			handlerLogger.WithError(err).WithField("schedule_id", created.ID).Warn("Schedule added but cache refresh failed")
		} else {
			handlerLogger.WithField("schedule_id", created.ID).Info("Schedule added successfully")
		}
		return c.Send(savedReply("Added", created, err, loc))
	}, admin)

	b.Handle("/update_schedule", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithField("handler", "/update_schedule")

		args := c.Args()
		if len(args) < 1 {
			return c.Send("Usage: /update_schedule <id> <YYYY-MM-DD> <HH:MM[:SS]> <repeat> [-silent] [text]")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: schedule id must be a number.")
		}
		handlerLogger = handlerLogger.WithField("schedule_id", id)

		in, err := parseScheduleArgs(args[1:], loc)
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Usage: /update_schedule <id> <YYYY-MM-DD> <HH:MM[:SS]> <repeat> [-silent] [text]\n" + err.Error())
		}

		updated, err := svc.Update(ctx, id, in)
		if updated == nil {
			if errors.Is(err, schedule.ErrNotFound) {
				handlerLogger.Warn("Schedule to update not found")
				return c.Send(fmt.Sprintf("Schedule #%d not found.", id))
			}
			handlerLogger.WithError(err).Error("Failed to update schedule")
			return c.Send(fmt.Sprintf("Could not update schedule: %s", err.Error()))
		}

		if err != nil {
			handlerLogger.WithError(err).Warn("Schedule updated but cache refresh failed")
		} else {
			handlerLogger.Info("Schedule updated successfully")
		}
		return c.Send(savedReply("Updated", updated, err, loc))
	}, admin)

	b.Handle("/delete_schedule", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithField("handler", "/delete_schedule")

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /delete_schedule <id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: schedule id must be a number.")
		}
		handlerLogger = handlerLogger.WithField("schedule_id", id)

		if err := svc.Delete(ctx, id); err != nil {
			if errors.Is(err, schedule.ErrNotFound) {
				handlerLogger.Warn("Schedule to delete not found")
				return c.Send(fmt.Sprintf("Schedule #%d not found.", id))
			}
			if errors.Is(err, app.ErrCacheRefresh) {
				handlerLogger.WithError(err).Warn("Schedule deleted but cache refresh failed")
				return c.Send(fmt.Sprintf("Schedule #%d deleted.\nWarning: reminders were not reloaded (%s).", id, err.Error()))
			}
			handlerLogger.WithError(err).Error("Failed to delete schedule")
			return c.Send(fmt.Sprintf("Could not delete schedule: %s", err.Error()))
		}

		handlerLogger.Info("Schedule deleted successfully")
		return c.Send(fmt.Sprintf("Schedule #%d deleted.", id))
	}, admin)

	b.Handle("/list_schedules", func(c telebot.Context) error {
		list, err := svc.ListAll(ctx)
		return sendList(c, baseLogger.WithField("handler", "/list_schedules"), "All schedules", list, err, loc)
	}, admin)

	b.Handle("/today", func(c telebot.Context) error {
		list, err := svc.ListToday(ctx, time.Now().In(loc))
		return sendList(c, baseLogger.WithField("handler", "/today"), "Today", list, err, loc)
	}, admin)

	b.Handle("/month", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithField("handler", "/month")
		year, month, err := parseMonthArg(c.Args(), time.Now().In(loc))
		if err != nil {
			return c.Send(err.Error())
		}
		list, err := svc.ListByMonth(ctx, year, month, loc)
		return sendList(c, handlerLogger, fmt.Sprintf("%s %d", month, year), list, err, loc)
	}, admin)

	b.Handle("/status", func(c telebot.Context) error {
		loadedAt := "never"
		if t := cache.LoadedAt(); !t.IsZero() {
			loadedAt = t.In(loc).Format(dateLayout + " " + timeLayout)
		}
		return c.Send(fmt.Sprintf("Cached schedules: %d\nLast refresh: %s\nTimezone: %s", cache.Len(), loadedAt, loc))
	}, admin)
}

// savedReply confirms a stored schedule. A non-nil err means the write
// committed but reminders still run from the previous cache contents.
func savedReply(action string, saved *schedule.Schedule, err error, loc *time.Location) string {
	reply := action + " " + formatSchedule(*saved, loc)
	if err != nil {
		reply += "\nWarning: the schedule is saved, but reminders were not reloaded (" + err.Error() + "). It takes effect after the next successful change or restart."
	}
	return reply
}

func sendList(c telebot.Context, handlerLogger *logrus.Entry, title string, list []*schedule.Schedule, err error, loc *time.Location) error {
	if err != nil {
		handlerLogger.WithError(err).Error("Failed to list schedules")
		return c.Send(fmt.Sprintf("Could not list schedules: %s", err.Error()))
	}
	if len(list) == 0 {
		return c.Send(title + ": no schedules.")
	}
	handlerLogger.WithField("schedules_count", len(list)).Info("Successfully retrieved schedule list")
	return c.Send(formatScheduleList(fmt.Sprintf("--- %s ---", title), list, loc))
}
