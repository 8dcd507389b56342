// Package notify pushes update-detected announcements to operators.
// Best-effort by design: a failed announcement is logged and forgotten.
package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	tele "gopkg.in/telebot.v4"
)

// UpdateInfo describes a newly observed deployment.
type UpdateInfo struct {
	URL             string    `json:"url"`
	Version         string    `json:"version"`
	PreviousVersion string    `json:"previous_version,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
}

// Notifier delivers an update announcement to one channel.
type Notifier interface {
	NotifyUpdate(ctx context.Context, info UpdateInfo) error
}

// WriterNotifier prints one line per announcement, defaulting to stdout in
// the daemon.
type WriterNotifier struct {
	Out io.Writer
}

func (n *WriterNotifier) NotifyUpdate(ctx context.Context, info UpdateInfo) error {
	_ = ctx
	_, err := fmt.Fprintf(n.Out, "%s new build detected: %s (was %s) at %s\n",
		info.DetectedAt.Format(time.RFC3339), info.Version, orUnknown(info.PreviousVersion), info.URL)
	return err
}

// TelegramNotifier sends announcements to a chat.
type TelegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func NewTelegram(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) NotifyUpdate(ctx context.Context, info UpdateInfo) error {
	_ = ctx
	msg := fmt.Sprintf("New build deployed\nversion: %s\nprevious: %s\nsite: %s",
		info.Version, orUnknown(info.PreviousVersion), info.URL)
	_, err := n.bot.Send(&tele.Chat{ID: n.chatID}, msg)
	return err
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
