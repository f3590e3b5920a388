package core

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	StartCommand  = "/start"
	HealthStatus  = "Bot is running"
	AffiliateLink = "https://otieu.com/4/10256428"
	WelcomeText   = "🎬 Welcome to Video Downloader Bot!\n\nTo use this bot, please verify you are human by clicking the link below:"
	ButtonLabel   = "🎁 Click here to access bot"
)

// SendMessage is the JSON body of a Bot API sendMessage call.
type SendMessage struct {
	ChatID      ChatID                        `json:"chat_id"`
	Text        string                        `json:"text"`
	ReplyMarkup tgbotapi.InlineKeyboardMarkup `json:"reply_markup"`
}

// NewWelcome builds the reply to /start: the welcome text with a single
// inline button pointing at the affiliate link.
func NewWelcome(chatID ChatID) SendMessage {
	return SendMessage{
		ChatID: chatID,
		Text:   WelcomeText,
		ReplyMarkup: tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(ButtonLabel, AffiliateLink),
			),
		),
	}
}

// MessageSender delivers a message through the Bot API and reports the
// response's ok flag.
type MessageSender interface {
	SendMessage(ctx context.Context, msg SendMessage) (bool, error)
}
