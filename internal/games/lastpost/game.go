// Package lastpost implements Last Post Wins: a hidden timer runs for a
// random duration and the author of the last message posted before it
// fires wins. Any message counts; there is no answer format.
package lastpost

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/dependencies/clock"
	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/model"
)

const finishGameIn = "!lpw_sc finish_game_in"

// Random timer bounds, in minutes
const (
	minTimerMinutes = 1
	maxTimerMinutes = 12 * 60
)

// Game is one Last Post Wins session
type Game struct {
	games.Base

	mu        sync.Mutex
	ending    bool
	timer     games.GameTimer
	lastMsg   model.MessageID
	timerTask *games.Task
	timerGen  int
}

var _ games.Session = (*Game)(nil)

// New constructs a session
func New(deps games.Deps) games.Session {
	g := &Game{Base: games.NewBase(deps)}
	g.RegisterCommands(
		games.Command{Name: finishGameIn, Handler: g.finishGameIn},
	)
	return g
}

// Name returns the game name
func (g *Game) Name() string {
	return "Last Post Wins"
}

// Run picks a random duration between 1 minute and 12 hours, posts the
// intro and starts the timer
func (g *Game) Run(ctx context.Context) error {
	minutes := g.Random().IntnRange(minTimerMinutes, maxTimerMinutes)
	timerResult := games.GameTimerIfValid(minutes, games.UnitMin)
	if timerResult.IsError() {
		return fmt.Errorf("random timer of %d minutes rejected: %s", minutes, timerResult.Message())
	}

	g.mu.Lock()
	g.timer = timerResult.Get()
	g.mu.Unlock()

	intro := "I am disappointed with your choice, people of Ascalon, " +
		"probably not the first and not the last time... This game was made for fools and yet you chose it. " +
		"The rules are very simple: the last post before the timer goes off wins... Yes, very interesting. " +
		"Let the spam begin!"
	if _, err := g.Say(ctx, intro); err != nil {
		return fmt.Errorf("posting intro: %w", err)
	}
	g.FireStarted(ctx)

	g.startTimer(g.timer.Value())
	return nil
}

// ListenForAnswers tracks the most recent valid message. No answer
// pipeline applies; any message counts.
func (g *Game) ListenForAnswers(ctx context.Context, msg model.Message) error {
	g.mu.Lock()
	if g.ending {
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	if !g.AcceptsMessage(msg) {
		return nil
	}

	if g.IsSpecialCommand(msg.Content) {
		return g.TryRunCommand(ctx, msg)
	}

	g.mu.Lock()
	g.lastMsg = msg.ID
	g.mu.Unlock()
	return nil
}

// End force-terminates: the timer is cancelled and awaited, the tracked
// last message is marked and the ended callback fires
func (g *Game) End(ctx context.Context) error {
	if !g.beginEnding() {
		return nil
	}
	g.stopTimer()
	return g.finish(ctx)
}

// startTimer launches the expiry task for d. Callers must not hold mu and
// must have stopped any prior timer task first.
func (g *Game) startTimer(d time.Duration) {
	g.mu.Lock()
	g.timerGen++
	gen := g.timerGen
	g.mu.Unlock()

	t := games.Go(func(taskCtx context.Context) {
		if g.Clock().Sleep(taskCtx, d) == clock.SleepCancelled {
			g.Logger().Debug("stopping the timer earlier")
			return
		}
		g.timerExpired(context.Background(), gen)
	})

	g.mu.Lock()
	g.timerTask = t
	g.mu.Unlock()
}

// timerExpired is the expiry continuation; it runs on the timer goroutine
// and funnels back through the session state before any side effect
func (g *Game) timerExpired(ctx context.Context, gen int) {
	g.mu.Lock()
	if g.ending || gen != g.timerGen {
		g.mu.Unlock()
		return
	}
	g.ending = true
	g.mu.Unlock()

	if _, err := g.Say(ctx, "Time has passed!"); err != nil {
		g.Logger().Error("failed to announce expiry", slog.String("error", err.Error()))
	}
	if err := g.finish(ctx); err != nil {
		g.Logger().Error("failed to finish game", slog.String("error", err.Error()))
	}
}

// beginEnding flips the ending flag, reporting false if already set
func (g *Game) beginEnding() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ending {
		return false
	}
	g.ending = true
	return true
}

// stopTimer cancels the outstanding timer task and waits for its
// cancellation to be observed. Callers must not hold mu.
func (g *Game) stopTimer() {
	g.mu.Lock()
	t := g.timerTask
	g.timerTask = nil
	g.timerGen++
	g.mu.Unlock()

	t.Stop()
}

// finish marks the tracked last message and fires the ended event.
// The caller has already stopped or is itself the timer task.
func (g *Game) finish(ctx context.Context) error {
	g.mu.Lock()
	lastMsg := g.lastMsg
	g.mu.Unlock()

	if lastMsg != 0 {
		if err := g.React(ctx, lastMsg, channel.EmojiCheckmark); err != nil {
			g.Logger().Warn("failed to mark winning message", slog.String("error", err.Error()))
		}
	}

	if _, err := g.Say(ctx, "Last Post Wins is over."); err != nil {
		return fmt.Errorf("posting outro: %w", err)
	}
	g.FireEnded(ctx)
	return nil
}

// finishGameIn handles `!lpw_sc finish_game_in <N>[<unit>]`. A zero
// duration finishes immediately; otherwise the running timer is replaced,
// strictly sequentially: the old task is cancelled and awaited before the
// new one starts.
func (g *Game) finishGameIn(ctx context.Context, msg model.Message) error {
	var internalErr error
	timer, result := g.TimerFromMessage(ctx, msg, finishGameIn, &internalErr)
	if internalErr != nil {
		return internalErr
	}
	if result.IsError() {
		if result.Message() != "" {
			if _, err := g.Say(ctx, result.Message()); err != nil {
				return fmt.Errorf("rejecting timer command: %w", err)
			}
		}
		return nil
	}

	if timer.IsZero() {
		return g.End(ctx)
	}

	g.stopTimer()

	g.mu.Lock()
	if g.ending {
		// Expiry won the race while we were stopping; nothing to replace
		g.mu.Unlock()
		return nil
	}
	g.timer = timer
	g.mu.Unlock()

	g.startTimer(timer.Value())

	label, err := timer.UnitLabel()
	if err != nil {
		return err
	}
	if _, err := g.Say(ctx, fmt.Sprintf("Timer set to %d[%s]", timer.Raw(), label)); err != nil {
		return fmt.Errorf("confirming timer: %w", err)
	}
	return nil
}
