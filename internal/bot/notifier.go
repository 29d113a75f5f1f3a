package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"couple-checklist/internal/service"
)

// sender is the slice of the Telegram API used for outgoing messages.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers service notifications to users' linked Telegram chats.
// Users without a linked chat are skipped.
type Notifier struct {
	api   sender
	users *service.UserService
}

func NewNotifier(api sender, users *service.UserService) *Notifier {
	return &Notifier{api: api, users: users}
}

func (n *Notifier) Notify(ctx context.Context, userID uint, text string) error {
	user, err := n.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TelegramChatID == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(*user.TelegramChatID, escape(text))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", *user.TelegramChatID, err)
	}
	return nil
}
