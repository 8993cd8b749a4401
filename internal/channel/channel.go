// Package channel defines the capability the game engine consumes to talk
// to its chat platform. The engine never sees transport details; it posts
// text and attaches reaction symbols to message handles.
package channel

import (
	"context"

	"github.com/madkingbot/officialgames/internal/model"
)

// Reaction symbols used by the games
const (
	EmojiCheckmark = "✅"
	EmojiCross     = "❌"
	EmojiYes       = "\U0001F1FE"
	EmojiNo        = "\U0001F1F3"
)

// Channel is the session's view of its chat channel
type Channel interface {
	// SendText posts a message and returns its handle
	SendText(ctx context.Context, text string) (model.MessageID, error)

	// React attaches a reaction symbol to a previously seen message
	React(ctx context.Context, id model.MessageID, emoji string) error

	// IsModerator reports whether the user holds moderator permissions
	IsModerator(ctx context.Context, user model.UserID) (bool, error)

	// DisplayName returns a best-effort human label for the user,
	// or empty if none is known
	DisplayName(ctx context.Context, user model.UserID) string
}
