// Package telegram adapts the abstract game channel onto the Telegram
// Bot API: one configured group chat is the game channel, reactions are
// rendered as emoji replies and moderator status maps to chat admins.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/model"
)

// Channel implements channel.Channel on a single Telegram chat
type Channel struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

var _ channel.Channel = (*Channel)(nil)

// NewChannel wraps bot for the given chat
func NewChannel(bot *tgbotapi.BotAPI, chatID int64, logger *slog.Logger) *Channel {
	return &Channel{bot: bot, chatID: chatID, logger: logger}
}

// SendText posts a message to the game chat
func (c *Channel) SendText(_ context.Context, text string) (model.MessageID, error) {
	sent, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, text))
	if err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}
	return model.MessageID(sent.MessageID), nil
}

// React renders a reaction as an emoji reply to the target message, the
// closest the Bot API offers to attaching a symbol
func (c *Channel) React(_ context.Context, id model.MessageID, emoji string) error {
	reply := tgbotapi.NewMessage(c.chatID, emoji)
	reply.ReplyToMessageID = int(id)
	if _, err := c.bot.Send(reply); err != nil {
		return fmt.Errorf("reacting to message %d: %w", id, err)
	}
	return nil
}

// IsModerator reports whether the user administers the game chat
func (c *Channel) IsModerator(_ context.Context, user model.UserID) (bool, error) {
	member, err := c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: c.chatID,
			UserID: int64(user),
		},
	})
	if err != nil {
		return false, fmt.Errorf("fetching chat member %d: %w", user, err)
	}
	return member.Status == "creator" || member.Status == "administrator", nil
}

// DisplayName returns the user's first name or username, best effort
func (c *Channel) DisplayName(_ context.Context, user model.UserID) string {
	member, err := c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: c.chatID,
			UserID: int64(user),
		},
	})
	if err != nil || member.User == nil {
		c.logger.Debug("no display name", slog.Int64("user", int64(user)))
		return ""
	}
	if member.User.FirstName != "" {
		return member.User.FirstName
	}
	return member.User.UserName
}
