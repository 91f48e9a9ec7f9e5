package notify

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender posts messages to the admin chat through a bot.
type TelegramSender struct {
	bot         *tgbotapi.BotAPI
	defaultChat int64
}

// NewTelegram checks the token against the bot API endpoint before returning.
func NewTelegram(token, endpoint string, adminChat int64, client *http.Client) (*TelegramSender, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot, defaultChat: adminChat}, nil
}

func (t *TelegramSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chat := m.ChatID
	if chat == 0 {
		chat = t.defaultChat
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chat, m.Text)); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chat, err)
	}
	return nil
}
