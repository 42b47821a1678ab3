package notify

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
)

// OwnerNotifier pushes the end-of-run summary to the salon owner.
type OwnerNotifier interface {
	Notify(ctx context.Context, text string) error
}

// TelegramNotifier delivers owner summaries to a Telegram chat.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
}

func NewTelegramNotifier(token string, chatID string) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return nil, err
	}
	b, err := bot.New(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: b, chatID: id}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   text,
	})
	return err
}

// NoopNotifier drops summaries when no owner channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(_ context.Context, _ string) error { return nil }
