package telegram

import (
	"context"
	"fmt"
	"time"

	"schedule_reminder_bot/internal/domain/schedule"
	domainTelegram "schedule_reminder_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// Sink delivers due batches as one Telegram message to a fixed chat.
type Sink struct {
	client   domainTelegram.Client
	chatID   int64
	location *time.Location
}

func NewSink(client domainTelegram.Client, chatID int64, loc *time.Location) *Sink {
	if loc == nil {
		loc = time.Local
	}
	return &Sink{client: client, chatID: chatID, location: loc}
}

func (s *Sink) Publish(ctx context.Context, due []schedule.Schedule) error {
	if len(due) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	text := formatReminder(due, s.location)

	// SendMessage has no context; give up waiting once ctx is done.
	sent := make(chan error, 1)
	go func() {
		sent <- s.client.SendMessage(s.chatID, text, &telebot.SendOptions{DisableWebPagePreview: true})
	}()
	select {
	case err := <-sent:
		if err != nil {
			return fmt.Errorf("failed to send reminder to chat %d: %w", s.chatID, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("reminder to chat %d not confirmed: %w", s.chatID, ctx.Err())
	}
}
