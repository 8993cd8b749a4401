package mocks

import (
	"context"
	"sync"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/model"
)

// Reaction records one React call
type Reaction struct {
	Message model.MessageID
	Emoji   string
}

// MockChannel is an in-memory Channel that records every side effect a
// session emits, for assertions in tests.
type MockChannel struct {
	mu sync.Mutex

	// Moderators holds the users IsModerator reports true for
	Moderators map[model.UserID]bool
	// Names holds display names returned by DisplayName
	Names map[model.UserID]string

	sent      []string
	sentIDs   []model.MessageID
	reactions []Reaction
	nextID    model.MessageID
}

// Ensure MockChannel implements Channel
var _ channel.Channel = (*MockChannel)(nil)

// NewMockChannel creates an empty MockChannel
func NewMockChannel() *MockChannel {
	return &MockChannel{
		Moderators: make(map[model.UserID]bool),
		Names:      make(map[model.UserID]string),
		nextID:     1000,
	}
}

// SendText records the text and returns a fresh message id
func (c *MockChannel) SendText(_ context.Context, text string) (model.MessageID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.sent = append(c.sent, text)
	c.sentIDs = append(c.sentIDs, c.nextID)
	return c.nextID, nil
}

// React records the reaction
func (c *MockChannel) React(_ context.Context, id model.MessageID, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reactions = append(c.reactions, Reaction{Message: id, Emoji: emoji})
	return nil
}

// IsModerator reports membership in the Moderators set
func (c *MockChannel) IsModerator(_ context.Context, user model.UserID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Moderators[user], nil
}

// DisplayName returns the configured name, empty if unknown
func (c *MockChannel) DisplayName(_ context.Context, user model.UserID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Names[user]
}

// Sent returns a copy of every text posted so far
func (c *MockChannel) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// LastSent returns the most recent posted text, empty if none
func (c *MockChannel) LastSent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

// Reactions returns a copy of every reaction recorded so far
func (c *MockChannel) Reactions() []Reaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reaction(nil), c.reactions...)
}

// Reset clears all recorded side effects
func (c *MockChannel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
	c.sentIDs = nil
	c.reactions = nil
}
