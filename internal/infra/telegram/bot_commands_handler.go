// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"schedule_reminder_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	b *telebot.Bot,
	cfg *config.AppConfig, // For AdminTelegramID
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			return c.Send(fmt.Sprintf("Hi %s! Reminders will be delivered here. Use /help for the list of commands.", c.Sender().FirstName))
		}
		logCtx.Info("User is unknown")
		return c.Send("Hi! This is a private reminder bot.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID != cfg.AdminTelegramID {
			return c.Send("No commands are available to you.")
		}
		return c.Send(helpText(cfg), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func helpText(cfg *config.AppConfig) string {
	var helpText strings.Builder
	helpText.WriteString("Available commands:\n\n")
	helpText.WriteString("`/add_schedule <YYYY-MM-DD> <HH:MM[:SS]> <repeat> [-silent] [text]`\n - Add a schedule. Repeat is one of once, daily, weekly, monthly, yearly.\n\n")
	helpText.WriteString("`/update_schedule <id> <YYYY-MM-DD> <HH:MM[:SS]> <repeat> [-silent] [text]`\n - Replace a schedule.\n\n")
	helpText.WriteString("`/delete_schedule <id>`\n - Delete a schedule.\n\n")
	helpText.WriteString("`/list_schedules`, `/today`, `/month [YYYY-MM]`\n - Show schedules.\n\n")
	helpText.WriteString("`/status`\n - Show the notification cache state.\n\n")
	helpText.WriteString(fmt.Sprintf("Dates are read in `%s`. Schedules marked -silent are kept but never notify.", cfg.Location))
	return helpText.String()
}
