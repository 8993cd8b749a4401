package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/madkingbot/officialgames/internal/host"
	"github.com/madkingbot/officialgames/internal/model"
)

const voteCallbackPrefix = "vote:"

// Gateway pumps Telegram updates into the game host. Messages from the
// configured chat become game messages; inline-keyboard callbacks become
// votes.
type Gateway struct {
	bot           *tgbotapi.BotAPI
	chatID        int64
	updateTimeout int
	host          *host.Host
	logger        *slog.Logger
}

// GatewayConfig configures a Gateway
type GatewayConfig struct {
	Bot           *tgbotapi.BotAPI
	ChatID        int64
	UpdateTimeout int
	Host          *host.Host
	Logger        *slog.Logger
}

func NewGateway(cfg GatewayConfig) *Gateway {
	return &Gateway{
		bot:           cfg.Bot,
		chatID:        cfg.ChatID,
		updateTimeout: cfg.UpdateTimeout,
		host:          cfg.Host,
		logger:        cfg.Logger,
	}
}

// PromptVote posts the voting keyboard, one button per registered game.
// Wire it into host.Config.PromptVote.
func (g *Gateway) PromptVote(_ context.Context, kinds []model.GameKind) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kinds))
	for _, kind := range kinds {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(host.DisplayName(kind), voteCallbackPrefix+string(kind)),
		))
	}
	msg := tgbotapi.NewMessage(g.chatID, "Cast your vote:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := g.bot.Send(msg); err != nil {
		return fmt.Errorf("posting vote keyboard: %w", err)
	}
	return nil
}

// Run consumes updates until ctx is cancelled
func (g *Gateway) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = g.updateTimeout
	updates := g.bot.GetUpdatesChan(u)
	defer g.bot.StopReceivingUpdates()

	g.logger.Info("telegram gateway started", slog.Int64("chat_id", g.chatID))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			g.handleUpdate(ctx, update)
		}
	}
}

func (g *Gateway) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		g.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		g.handleMessage(ctx, update.Message)
	}
}

func (g *Gateway) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil || m.Chat.ID != g.chatID || m.From == nil {
		return
	}
	msg := model.Message{
		ID:         model.MessageID(m.MessageID),
		Channel:    model.ChannelID(m.Chat.ID),
		Author:     model.UserID(m.From.ID),
		AuthorName: displayName(m.From),
		Content:    m.Text,
	}
	if err := g.host.HandleMessage(ctx, msg); err != nil {
		g.logger.Error("handling message",
			slog.Int64("message_id", int64(msg.ID)),
			slog.String("error", err.Error()))
	}
}

func (g *Gateway) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Always answer the callback so the client stops its spinner
	defer func() {
		if _, err := g.bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			g.logger.Debug("answering callback", slog.String("error", err.Error()))
		}
	}()

	if q.From == nil || !strings.HasPrefix(q.Data, voteCallbackPrefix) {
		return
	}
	if q.Message != nil && q.Message.Chat != nil && q.Message.Chat.ID != g.chatID {
		return
	}
	kind := model.GameKind(strings.TrimPrefix(q.Data, voteCallbackPrefix))
	if err := g.host.HandleVote(ctx, model.UserID(q.From.ID), kind); err != nil {
		g.logger.Warn("handling vote",
			slog.Int64("voter", q.From.ID),
			slog.String("game", string(kind)),
			slog.String("error", err.Error()))
	}
}

func displayName(u *tgbotapi.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.UserName
}
