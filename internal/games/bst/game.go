// Package bst implements Blood Sweat Tears, the counting game: players
// count upward one post at a time, substituting the digits 3, 6 and 9
// with "blood", "sweat" and "tears". The first wrong or relayed answer
// ends the game.
package bst

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/validation"
)

const (
	answerCommand    = "!bst"
	specialCommand   = "!bst_sc"
	setNewRecord     = specialCommand + " set_new_record"
	startCountingAt  = specialCommand + " start_counting_from"
	maxRecentAuthors = 3
)

// DefaultRecord is the record announced when no configured value overrides it
const DefaultRecord = 691

// Game is one Blood Sweat Tears session
type Game struct {
	games.Base

	mu            sync.Mutex
	currentNumber int
	currentRecord int
	recordBeaten  bool
	recentAuthors []model.UserID
	ended         bool
}

var _ games.Session = (*Game)(nil)

// New constructs a session with the default starting record
func New(deps games.Deps) games.Session {
	return NewWithRecord(deps, DefaultRecord)
}

// NewWithRecord constructs a session whose record to beat is record
func NewWithRecord(deps games.Deps, record int) *Game {
	g := &Game{
		Base:          games.NewBase(deps),
		currentNumber: 1,
		currentRecord: record,
	}
	g.RegisterCommands(
		games.Command{Name: setNewRecord, Handler: g.setRecord},
		games.Command{Name: startCountingAt, Handler: g.startCountingFrom},
	)
	return g
}

// Name returns the game name
func (g *Game) Name() string {
	return "Blood Sweat Tears"
}

// Run posts the rules and fires the started callback
func (g *Game) Run(ctx context.Context) error {
	intro := "If you don't know this game, then you need to play more Pre.\n" +
		"Count as high as you can replacing the number 3, 6 and 9 with 'Blood', 'Sweat', 'Tears' respectively.\n" +
		"eg: ...21, 22, Blood, 24, 25...\n\n" +
		"You may only count one number per post.\n" +
		"You can only re-post after 3 other players have posted (relates to the game only).\n" +
		"Double posting the same number results in a game loss.\n\n" +
		"Participants will receive 20 coins for each correct response collectively.\n" +
		"If participants beat the current record, the rewards are doubled.\n" +
		fmt.Sprintf("Current record is: %d\n", g.currentRecord) +
		"Blood Sweat Tears has started!\n" +
		"Enter the next number using the format `!bst <NUMBER>`"

	if _, err := g.Say(ctx, intro); err != nil {
		return fmt.Errorf("posting intro: %w", err)
	}
	g.FireStarted(ctx)
	return nil
}

// ListenForAnswers processes one channel message: special commands first,
// then the answer pipeline. A wrong or relayed answer is terminal.
func (g *Game) ListenForAnswers(ctx context.Context, msg model.Message) error {
	g.mu.Lock()
	if g.ended {
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

	if result := validation.Message(msg.Content, answerCommand); result.IsError() {
		if result.Message() != "" {
			if _, err := g.Say(ctx, result.Message()); err != nil {
				return fmt.Errorf("rejecting answer: %w", err)
			}
		}
		return nil
	}

	answerCheck, err := g.answerCorrect(msg)
	if err != nil {
		return err
	}

	result := validation.Run(
		answerCheck,
		g.authorNotInQueue(msg),
	)
	if result.IsError() {
		// First wrong or relayed answer ends the game
		if err := g.React(ctx, msg.ID, channel.EmojiCross); err != nil {
			g.Logger().Warn("failed to mark losing answer", slog.String("error", err.Error()))
		}
		if _, err := g.Say(ctx, result.Message()); err != nil {
			return fmt.Errorf("announcing loss: %w", err)
		}
		return g.End(ctx)
	}

	if err := g.React(ctx, msg.ID, channel.EmojiCheckmark); err != nil {
		g.Logger().Warn("failed to mark accepted answer", slog.String("error", err.Error()))
	}
	if err := g.trackRecord(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	g.pushAuthor(msg.Author)
	g.currentNumber++
	g.mu.Unlock()

	return nil
}

// End announces the outcome and fires the ended callback
func (g *Game) End(ctx context.Context) error {
	g.mu.Lock()
	if g.ended {
		g.mu.Unlock()
		return nil
	}
	g.ended = true
	beaten := g.recordBeaten
	g.mu.Unlock()

	outro := "Blood Sweat Tears is over."
	if beaten {
		outro = "Blood Sweat Tears is over, but rejoice people of the peaceful Ascalon city! " +
			"The spy will be punished and you have beaten the record, what happens very rarely."
	}
	if _, err := g.Say(ctx, outro); err != nil {
		return fmt.Errorf("posting outro: %w", err)
	}
	g.FireEnded(ctx)
	return nil
}

// CorrectAnswer derives the canonical answer for n. Numbers containing no
// 3, 6 or 9 answer as the literal number; otherwise only the mapped digits
// are emitted, space-joined (33 -> "blood blood", 36 -> "blood sweat").
func CorrectAnswer(n int) string {
	s := strconv.Itoa(n)
	if !strings.ContainsAny(s, "369") {
		return s
	}

	var words []string
	for _, digit := range s {
		if word := bstWord(digit); word != "" {
			words = append(words, word)
		}
	}
	return strings.Join(words, " ")
}

func bstWord(digit rune) string {
	switch digit {
	case '3':
		return "blood"
	case '6':
		return "sweat"
	case '9':
		return "tears"
	default:
		return ""
	}
}

func (g *Game) trackRecord(ctx context.Context) error {
	g.mu.Lock()
	announce := !g.recordBeaten && g.currentNumber > g.currentRecord
	if announce {
		g.recordBeaten = true
	}
	if g.recordBeaten {
		g.currentRecord = g.currentNumber
	}
	g.mu.Unlock()

	if announce {
		if _, err := g.Say(ctx, "You are smarter than I thought, good job! "+
			"You have just beaten the current record! The rewards will be doubled after completing the game."); err != nil {
			return fmt.Errorf("announcing record: %w", err)
		}
	}
	return nil
}

func (g *Game) pushAuthor(author model.UserID) {
	g.recentAuthors = append(g.recentAuthors, author)
	if len(g.recentAuthors) > maxRecentAuthors {
		g.recentAuthors = g.recentAuthors[1:]
	}
}
