package model

// UserID uniquely identifies a chat user
type UserID int64

// MessageID identifies a message within the game channel
type MessageID int64

// ChannelID identifies the shared text channel the bot operates in
type ChannelID int64

// GameKind identifies a registered game implementation
type GameKind string

const (
	KindBloodSweatTears GameKind = "blood_sweat_tears"
	KindLastPostWins    GameKind = "last_post_wins"
	KindYesOrNo         GameKind = "yes_or_no"
)

// Message is one inbound channel message, already resolved by the gateway
type Message struct {
	ID         MessageID
	Channel    ChannelID
	Author     UserID
	AuthorName string
	Content    string
}

// IsEmpty reports whether the message carries no usable content
func (m Message) IsEmpty() bool {
	return m.Content == ""
}
