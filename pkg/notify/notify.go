// Package notify delivers short operational messages to a chat channel.
package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Notifier sends a plain-text message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TelegramNotifier posts messages to a single Telegram chat.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
}

// NewTelegram creates a bot client without calling getMe, so startup does not depend on Telegram availability.
func NewTelegram(token string, chatID int64, opts ...bot.Option) (*TelegramNotifier, error) {
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: b, chatID: chatID}, nil
}

// Notify sends text to the configured chat.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("telegram send message: %w", err)
	}
	return nil
}

// LogNotifier writes messages to the structured log. Used when no chat is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLog returns a notifier backed by logger.
func NewLog(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs text at info level.
func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info("notification", zap.String("text", text))
	return nil
}
