package games

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/dependencies/clock"
	"github.com/madkingbot/officialgames/internal/dependencies/random"
	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/validation"
)

// Command maps a multi-word special-command string to its handler.
// Registration order matters: dispatch picks the first registered command
// whose literal string prefixes the message.
type Command struct {
	Name    string
	Handler func(ctx context.Context, msg model.Message) error
}

// Base carries the state and behavior shared by every game session: the
// channel, the injected dependencies and the special-command table.
type Base struct {
	botID     model.UserID
	ch        channel.Channel
	clk       clock.Clock
	rnd       random.Random
	logger    *slog.Logger
	callbacks Callbacks
	commands  []Command
}

// NewBase wires a Base from the session dependencies
func NewBase(deps Deps) Base {
	return Base{
		botID:     deps.BotID,
		ch:        deps.Channel,
		clk:       deps.Clock,
		rnd:       deps.Random,
		logger:    deps.Logger,
		callbacks: deps.Callbacks,
	}
}

// RegisterCommands installs the session's special-command table.
// Order is preserved.
func (b *Base) RegisterCommands(commands ...Command) {
	b.commands = append(b.commands, commands...)
}

// Clock returns the injected clock
func (b *Base) Clock() clock.Clock {
	return b.clk
}

// Random returns the injected randomness source
func (b *Base) Random() random.Random {
	return b.rnd
}

// Logger returns the session logger
func (b *Base) Logger() *slog.Logger {
	return b.logger
}

// Say posts text to the game channel
func (b *Base) Say(ctx context.Context, text string) (model.MessageID, error) {
	return b.ch.SendText(ctx, text)
}

// React attaches a reaction symbol to a message
func (b *Base) React(ctx context.Context, id model.MessageID, emoji string) error {
	return b.ch.React(ctx, id, emoji)
}

// FireStarted invokes the started callback, if registered
func (b *Base) FireStarted(ctx context.Context) {
	if b.callbacks.OnStarted != nil {
		b.callbacks.OnStarted(ctx)
	}
}

// FireEnded invokes the ended callback, if registered
func (b *Base) FireEnded(ctx context.Context) {
	if b.callbacks.OnEnded != nil {
		b.callbacks.OnEnded(ctx)
	}
}

// AcceptsMessage is the basic validity gate: the message must have content
// and must not come from the bot itself. Channel filtering happened at the
// gateway.
func (b *Base) AcceptsMessage(msg model.Message) bool {
	return !msg.IsEmpty() && msg.Author != b.botID
}

// IsSpecialCommand reports whether content addresses any registered
// special command. Detection is deliberately permissive: each
// space-separated token of a registered command is split on underscores,
// and if every word of any token appears as a case-insensitive substring
// of the message, the message is treated as a command attempt. Short or
// ambiguous words can therefore over-match; dispatch resolves the real
// command, or rejects with a generic reply.
func (b *Base) IsSpecialCommand(content string) bool {
	lower := strings.ToLower(content)
	for _, command := range b.commands {
		for _, part := range strings.Split(command.Name, " ") {
			words := strings.Split(strings.ReplaceAll(part, "_", " "), " ")
			if containsAllWords(lower, words) {
				return true
			}
		}
	}
	return false
}

func containsAllWords(lowerContent string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(lowerContent, strings.ToLower(w)) {
			return false
		}
	}
	return true
}

// TryRunCommand dispatches the first registered command whose literal
// string prefixes the message. No literal match after a positive detection
// means the command was mangled; the sender is told so rather than
// silently dropped.
func (b *Base) TryRunCommand(ctx context.Context, msg model.Message) error {
	for _, command := range b.commands {
		if strings.HasPrefix(msg.Content, command.Name) {
			return command.Handler(ctx, msg)
		}
	}

	if _, err := b.Say(ctx, "This server will fall if you guys write like this..."); err != nil {
		return fmt.Errorf("rejecting malformed command: %w", err)
	}
	return nil
}

// ModeratorCheck builds the moderator-permission pipeline step for the
// message author. A missing author is an internal invariant violation and
// surfaces through the returned error pointer, never as a user reply.
func (b *Base) ModeratorCheck(ctx context.Context, msg model.Message, internalErr *error) validation.Check {
	return func() validation.Result {
		if msg.Author == 0 {
			*internalErr = fmt.Errorf("content %q: %w", msg.Content, model.ErrNoAuthor)
			return validation.FailSilent()
		}

		isMod, err := b.ch.IsModerator(ctx, msg.Author)
		if err != nil {
			*internalErr = fmt.Errorf("moderator check: %w", err)
			return validation.FailSilent()
		}
		if isMod {
			return validation.OK()
		}

		if name := b.ch.DisplayName(ctx, msg.Author); name != "" {
			return validation.Fail(fmt.Sprintf(
				"Haha, nice try %s! Unfortunately, you are just a mere mortal.", name))
		}
		return validation.Fail("Haha, nice try! Unfortunately, you are just a mere mortal.")
	}
}

// TimerFromMessage validates a moderator `finish game in` style message
// and extracts its timer: message pipeline, moderator permission, then the
// `<N>[<unit>]` grammar. The Result carries any user-facing rejection;
// internalErr conventions follow ModeratorCheck.
func (b *Base) TimerFromMessage(ctx context.Context, msg model.Message, command string, internalErr *error) (GameTimer, validation.Result) {
	result := validation.Run(
		func() validation.Result { return validation.Message(msg.Content, command) },
		b.ModeratorCheck(ctx, msg, internalErr),
	)
	if result.IsError() {
		return GameTimer{}, result
	}

	parsed := TimerFromAnswer(validation.Answer(msg.Content, command))
	if parsed.IsError() {
		return GameTimer{}, validation.Fail(parsed.Message())
	}
	return parsed.Get(), validation.OK()
}
