package telegram

import "gopkg.in/telebot.v3"

// Client is the outbound message transport used by reminder delivery.
// Implementations must be safe for use from the notification tick goroutine.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}
