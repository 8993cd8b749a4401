// Package yesorno implements Yes or No: participants answer yes or no,
// and when the timer fires the bot reveals a random answer and sweeps
// every participant's message with a matching or failing reaction.
package yesorno

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/dependencies/clock"
	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/validation"
)

const (
	answerCommand      = "!yon"
	specialCommand     = "!yon_sc"
	finishGameIn       = specialCommand + " finish_game_in"
	changeParticipants = specialCommand + " change_participants_number"
)

const (
	defaultMaxParticipants = 500
	participantsCap        = 1500
)

// Pacing between sweep reactions, to stay under platform rate limits
const sweepReactionDelay = 100 * time.Millisecond

// The reveal picks an index into this list
var yesOrNoAnswers = [2]string{"no", "yes"}

type storedAnswer struct {
	messageID model.MessageID
	answer    string
}

// Game is one Yes or No session
type Game struct {
	games.Base

	// sessionCtx parents every background task; End cancels it so the
	// timer and any in-flight sweep stop together
	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	mu              sync.Mutex
	endingGame      bool
	addingEmojis    bool
	finished        bool
	maxParticipants int
	answers         map[model.UserID]storedAnswer
	timer           games.GameTimer
	timerTask       *games.Task
	timerGen        int
	sweepTask       *games.Task
}

var _ games.Session = (*Game)(nil)

// New constructs a session
func New(deps games.Deps) games.Session {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		Base:            games.NewBase(deps),
		sessionCtx:      ctx,
		sessionCancel:   cancel,
		maxParticipants: defaultMaxParticipants,
		answers:         make(map[model.UserID]storedAnswer),
		timer:           games.DefaultGameTimer(),
	}
	g.RegisterCommands(
		games.Command{Name: finishGameIn, Handler: g.finishGameIn},
		games.Command{Name: changeParticipants, Handler: g.changeParticipants},
	)
	return g
}

// Name returns the game name
func (g *Game) Name() string {
	return "Yes or No"
}

// Run posts the rules and starts the default 24 hour timer
func (g *Game) Run(ctx context.Context) error {
	intro := "Yes or No? The rules are simple! Choose your answer by using `!yon yes` or `!yon no` command.\n" +
		"The result will be announced after 24 hours."
	if _, err := g.Say(ctx, intro); err != nil {
		return fmt.Errorf("posting intro: %w", err)
	}
	g.FireStarted(ctx)

	g.mu.Lock()
	d := g.timer.Value()
	g.mu.Unlock()

	g.startTimer(d)
	return nil
}

// ListenForAnswers processes one channel message: special commands first,
// then the yes/no answer pipeline and the participant map upsert
func (g *Game) ListenForAnswers(ctx context.Context, msg model.Message) error {
	if g.isGameEnding() {
		return nil
	}
	if !g.AcceptsMessage(msg) {
		return nil
	}

	if g.IsSpecialCommand(msg.Content) {
		return g.TryRunCommand(ctx, msg)
	}

	answer := ""
	result := validation.Run(
		func() validation.Result { return validation.Message(msg.Content, answerCommand) },
		validAnswer(msg.Content, &answer),
	)
	if result.IsError() {
		if result.Message() != "" {
			if _, err := g.Say(ctx, result.Message()); err != nil {
				return fmt.Errorf("rejecting answer: %w", err)
			}
		}
		return nil
	}

	if g.atCapacity(msg.Author) {
		// Capacity reached: no partial admission, the game ends instead
		if _, err := g.Say(ctx, "Haha! You are unlucky, I decided to finish this game "+
			"earlier due to too much interest."); err != nil {
			return fmt.Errorf("announcing capacity: %w", err)
		}
		return g.finishGame(ctx)
	}

	return g.storeAnswer(ctx, msg, answer)
}

// End force-terminates: the timer and any in-flight sweep are cancelled
// and awaited before the ended callback fires, so collaborators observing
// "ended" see no further side effects
func (g *Game) End(ctx context.Context) error {
	g.sessionCancel()

	g.mu.Lock()
	if g.finished {
		g.mu.Unlock()
		return nil
	}
	g.endingGame = true
	timerTask, sweepTask := g.timerTask, g.sweepTask
	g.mu.Unlock()

	timerTask.Wait()
	sweepTask.Wait()
	return g.finalize(ctx)
}

func (g *Game) isGameEnding() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endingGame || g.addingEmojis
}

func (g *Game) atCapacity(author model.UserID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, known := g.answers[author]
	return len(g.answers) >= g.maxParticipants && !known
}

// storeAnswer upserts the author's answer: an identical repeat is rejected,
// a changed answer overwrites, a new answer joins. The stored message gets
// the flag reaction matching the answer.
func (g *Game) storeAnswer(ctx context.Context, msg model.Message, answer string) error {
	lowered := strings.ToLower(answer)

	g.mu.Lock()
	current, exists := g.answers[msg.Author]
	if exists && current.answer == lowered {
		g.mu.Unlock()
		if _, err := g.Say(ctx, "Why do you answer the same way twice in a row? "+
			"Don't waste my time you fool!"); err != nil {
			return fmt.Errorf("rejecting repeat answer: %w", err)
		}
		return nil
	}
	g.answers[msg.Author] = storedAnswer{messageID: msg.ID, answer: lowered}
	g.mu.Unlock()

	emoji, err := answerEmoji(lowered)
	if err != nil {
		return err
	}
	if err := g.React(ctx, msg.ID, emoji); err != nil {
		g.Logger().Warn("failed to flag answer", slog.String("error", err.Error()))
	}
	return nil
}

func answerEmoji(answer string) (string, error) {
	switch answer {
	case "yes":
		return channel.EmojiYes, nil
	case "no":
		return channel.EmojiNo, nil
	default:
		return "", fmt.Errorf("answer %q: %w", answer, model.ErrNoAnswerEmoji)
	}
}

// startTimer launches the expiry task for d. Callers must not hold mu and
// must have stopped any prior timer task first.
func (g *Game) startTimer(d time.Duration) {
	g.mu.Lock()
	g.timerGen++
	gen := g.timerGen
	g.mu.Unlock()

	t := games.GoCtx(g.sessionCtx, func(taskCtx context.Context) {
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

func (g *Game) timerExpired(ctx context.Context, gen int) {
	g.mu.Lock()
	if g.endingGame || g.finished || gen != g.timerGen {
		g.mu.Unlock()
		return
	}
	g.endingGame = true
	g.mu.Unlock()

	if _, err := g.Say(ctx, "Time has passed!"); err != nil {
		g.Logger().Error("failed to announce expiry", slog.String("error", err.Error()))
	}
	if err := g.revealAndFinish(ctx); err != nil {
		g.Logger().Error("failed to finish game", slog.String("error", err.Error()))
	}
}

// stopTimer cancels the outstanding timer task and waits for its
// cancellation to be observed. Callers must not hold mu and must not be
// the timer task itself.
func (g *Game) stopTimer() {
	g.mu.Lock()
	t := g.timerTask
	g.timerTask = nil
	g.timerGen++
	g.mu.Unlock()

	t.Stop()
}

// finishGame begins the reveal from the message path (capacity reached or
// zero-duration finish command)
func (g *Game) finishGame(ctx context.Context) error {
	g.mu.Lock()
	if g.endingGame || g.finished {
		g.mu.Unlock()
		return nil
	}
	g.endingGame = true
	g.mu.Unlock()

	g.stopTimer()
	return g.revealAndFinish(ctx)
}

// revealAndFinish announces a random answer, sweeps every participant's
// message, and fires the ended event once the sweep has fully finished
func (g *Game) revealAndFinish(ctx context.Context) error {
	answer := yesOrNoAnswers[g.Random().Intn(len(yesOrNoAnswers))]
	if _, err := g.Say(ctx, fmt.Sprintf("My answer is... %s", strings.ToUpper(answer))); err != nil {
		return fmt.Errorf("announcing answer: %w", err)
	}

	sweep := g.startSweep(answer)
	sweep.Wait()

	return g.finalize(ctx)
}

// startSweep marks every stored answer right or wrong against the revealed
// one, pacing reactions to respect rate limits. Runs as a cancellable
// background task so End can abort it mid-flight.
func (g *Game) startSweep(revealed string) *games.Task {
	g.mu.Lock()
	g.addingEmojis = true
	entries := make([]storedAnswer, 0, len(g.answers))
	for _, a := range g.answers {
		entries = append(entries, a)
	}
	g.mu.Unlock()

	t := games.GoCtx(g.sessionCtx, func(taskCtx context.Context) {
		for _, entry := range entries {
			emoji := channel.EmojiCross
			if entry.answer == revealed {
				emoji = channel.EmojiCheckmark
			}
			if err := g.React(taskCtx, entry.messageID, emoji); err != nil {
				g.Logger().Warn("failed to sweep answer", slog.String("error", err.Error()))
			}
			if g.Clock().Sleep(taskCtx, sweepReactionDelay) == clock.SleepCancelled {
				g.Logger().Debug("stopped adding reactions to participating messages")
				return
			}
		}

		g.mu.Lock()
		g.addingEmojis = false
		g.mu.Unlock()
	})

	g.mu.Lock()
	g.sweepTask = t
	g.mu.Unlock()
	return t
}

// finalize posts the outro and fires the ended callback exactly once
func (g *Game) finalize(ctx context.Context) error {
	g.mu.Lock()
	if g.finished {
		g.mu.Unlock()
		return nil
	}
	g.finished = true
	g.mu.Unlock()

	if _, err := g.Say(ctx, "Yes or No is over."); err != nil {
		return fmt.Errorf("posting outro: %w", err)
	}
	g.FireEnded(ctx)
	return nil
}
