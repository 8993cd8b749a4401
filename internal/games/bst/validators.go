package bst

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/validation"
)

// answerCorrect compares the submitted text, case and space insensitive,
// against the canonical answer for the current number. An empty canonical
// answer cannot occur through CorrectAnswer and is treated as an internal
// invariant violation.
func (g *Game) answerCorrect(msg model.Message) (validation.Check, error) {
	g.mu.Lock()
	number := g.currentNumber
	g.mu.Unlock()

	correct := CorrectAnswer(number)
	if correct == "" {
		return nil, fmt.Errorf("current number %d: %w", number, model.ErrEmptyAnswerKey)
	}

	return func() validation.Result {
		submitted := validation.Answer(msg.Content, answerCommand)
		if !strings.EqualFold(submitted, strings.ReplaceAll(correct, " ", "")) {
			return validation.Fail(fmt.Sprintf(
				"Incorrect answer. The correct answer is %s.\n"+
					"You must be a charr spy. Guards! Banish this fool beyond the northern walls.", correct))
		}
		return validation.OK()
	}, nil
}

// authorNotInQueue rejects authors among the last 3 accepted posters
func (g *Game) authorNotInQueue(msg model.Message) validation.Check {
	return func() validation.Result {
		g.mu.Lock()
		defer g.mu.Unlock()
		for _, recent := range g.recentAuthors {
			if recent == msg.Author {
				return validation.Fail(fmt.Sprintf(
					"Can't you count to %d?\n"+
						"Ascalonian peasants are becoming more and more stupid...", maxRecentAuthors))
			}
		}
		return validation.OK()
	}
}

// setRecord handles `!bst_sc set_new_record <N>`: moderators may raise the
// record unless it has already been beaten this game
func (g *Game) setRecord(ctx context.Context, msg model.Message) error {
	var internalErr error
	newRecord := 0

	result := validation.Run(
		func() validation.Result { return validation.Message(msg.Content, setNewRecord) },
		g.ModeratorCheck(ctx, msg, &internalErr),
		g.recordNotBeaten(),
		parseInt(msg.Content, setNewRecord, &newRecord,
			"*sigh* Do I really need to explain why your command did not work?"),
		g.recordAboveCurrent(&newRecord),
	)
	if internalErr != nil {
		return internalErr
	}
	if result.IsError() {
		return g.reject(ctx, result)
	}

	g.mu.Lock()
	g.currentRecord = newRecord
	g.mu.Unlock()

	_, err := g.Say(ctx, "Done!")
	return err
}

// startCountingFrom handles `!bst_sc start_counting_from <N>`: moderators
// may reset the counter to any positive number, clearing the relay queue
func (g *Game) startCountingFrom(ctx context.Context, msg model.Message) error {
	var internalErr error
	newNumber := 0

	result := validation.Run(
		func() validation.Result { return validation.Message(msg.Content, startCountingAt) },
		g.ModeratorCheck(ctx, msg, &internalErr),
		parseInt(msg.Content, startCountingAt, &newNumber, "Use NUMBERS, clown!"),
		positiveNumber(&newNumber),
	)
	if internalErr != nil {
		return internalErr
	}
	if result.IsError() {
		return g.reject(ctx, result)
	}

	g.mu.Lock()
	g.currentNumber = newNumber
	g.recentAuthors = nil
	g.mu.Unlock()

	_, err := g.Say(ctx, fmt.Sprintf("From now on, counting starts from %d.", newNumber))
	return err
}

func (g *Game) recordNotBeaten() validation.Check {
	return func() validation.Result {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.recordBeaten {
			return validation.Fail("You cannot set a new record value " +
				"if the current record has been beaten during this game!")
		}
		return validation.OK()
	}
}

func (g *Game) recordAboveCurrent(value *int) validation.Check {
	return func() validation.Result {
		g.mu.Lock()
		defer g.mu.Unlock()
		if *value <= g.currentNumber {
			return validation.Fail("You clown, you are trying to set the current record to a value, " +
				"which is lower or the same as the next expected answer. Are you trying to cheat me? " +
				"I will not allow that!")
		}
		return validation.OK()
	}
}

func positiveNumber(value *int) validation.Check {
	return func() validation.Result {
		if *value <= 0 {
			return validation.Fail("What are you doing you idiot? Counting in bst starts from 1!")
		}
		return validation.OK()
	}
}

func parseInt(content, command string, out *int, failMessage string) validation.Check {
	return func() validation.Result {
		parsed, err := strconv.Atoi(validation.Answer(content, command))
		if err != nil {
			return validation.Fail(failMessage)
		}
		*out = parsed
		return validation.OK()
	}
}

func (g *Game) reject(ctx context.Context, result validation.Result) error {
	if result.Message() == "" {
		return nil
	}
	if _, err := g.Say(ctx, result.Message()); err != nil {
		return fmt.Errorf("rejecting command: %w", err)
	}
	return nil
}
