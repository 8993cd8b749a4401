// Package games holds the session engine shared by every game: the
// lifecycle contract, the special-command dispatch, the validated timer
// value and the cancellable background task the timers run on.
package games

import (
	"context"
	"log/slog"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/dependencies/clock"
	"github.com/madkingbot/officialgames/internal/dependencies/random"
	"github.com/madkingbot/officialgames/internal/model"
)

// Session is one running game, scoped to a single channel. The host
// serializes calls to ListenForAnswers; Run is called once before any
// message is forwarded and End at most once to force termination.
type Session interface {
	// Name returns the human-readable game name
	Name() string

	// Run posts the intro text, fires the started callback and begins
	// any timer the game uses
	Run(ctx context.Context) error

	// ListenForAnswers processes one inbound message. It is a no-op when
	// the game is in a terminal or ending phase.
	ListenForAnswers(ctx context.Context, msg model.Message) error

	// End force-terminates the session, cancelling all background tasks
	// and firing the ended callback once they have finished
	End(ctx context.Context) error
}

// Callbacks are the lifecycle notifications a session fires. Both are
// optional and invoked at most once per session; OnEnded fires only after
// every background task has finished, so no side effects follow it.
type Callbacks struct {
	OnStarted func(ctx context.Context)
	OnEnded   func(ctx context.Context)
}

// Deps is the uniform construction surface every game accepts
type Deps struct {
	BotID     model.UserID
	Channel   channel.Channel
	Clock     clock.Clock
	Random    random.Random
	Logger    *slog.Logger
	Callbacks Callbacks
}

// Constructor builds a ready-to-run session from its dependencies
type Constructor func(deps Deps) Session
