package yesorno

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/validation"
)

// validAnswer accepts only "yes" or "no", case-insensitively, and writes
// the accepted form through out
func validAnswer(content string, out *string) validation.Check {
	return func() validation.Result {
		answer := validation.Answer(content, answerCommand)
		for _, allowed := range yesOrNoAnswers {
			if strings.EqualFold(answer, allowed) {
				*out = answer
				return validation.OK()
			}
		}
		return validation.Fail("All you have to do is write `Yes` or `No`!")
	}
}

// finishGameIn handles `!yon_sc finish_game_in <N>[<unit>]`. A zero
// duration reveals immediately; otherwise the running timer is replaced
// sequentially, waiting on the timer task specifically and never on the
// sweep.
func (g *Game) finishGameIn(ctx context.Context, msg model.Message) error {
	var internalErr error
	timer, result := g.TimerFromMessage(ctx, msg, finishGameIn, &internalErr)
	if internalErr != nil {
		return internalErr
	}
	if result.IsError() {
		return g.reject(ctx, result)
	}

	if timer.IsZero() {
		return g.finishGame(ctx)
	}

	g.stopTimer()

	g.mu.Lock()
	if g.endingGame || g.finished {
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

// changeParticipants handles `!yon_sc change_participants_number <N>`:
// the cap may only be raised, only above the current participant count,
// and never beyond the hard limit
func (g *Game) changeParticipants(ctx context.Context, msg model.Message) error {
	var internalErr error
	newMax := 0

	result := validation.Run(
		func() validation.Result { return validation.Message(msg.Content, changeParticipants) },
		g.ModeratorCheck(ctx, msg, &internalErr),
		parseParticipants(msg.Content, &newMax),
		g.participantsNumberValid(&newMax),
	)
	if internalErr != nil {
		return internalErr
	}
	if result.IsError() {
		return g.reject(ctx, result)
	}

	g.mu.Lock()
	oldMax := g.maxParticipants
	g.maxParticipants = newMax
	g.mu.Unlock()

	if _, err := g.Say(ctx, fmt.Sprintf(
		"Max participants number will be changed from %d to %d.", oldMax, newMax)); err != nil {
		return fmt.Errorf("confirming participants change: %w", err)
	}
	return nil
}

func parseParticipants(content string, out *int) validation.Check {
	return func() validation.Result {
		parsed, err := strconv.Atoi(validation.Answer(content, changeParticipants))
		if err != nil {
			return validation.Fail("Incorrect value for new max participants number! Use numeric values.")
		}
		*out = parsed
		return validation.OK()
	}
}

func (g *Game) participantsNumberValid(value *int) validation.Check {
	return func() validation.Result {
		if *value < 1 {
			return validation.Fail("... What are you trying to do?")
		}

		g.mu.Lock()
		current := len(g.answers)
		g.mu.Unlock()
		if *value <= current {
			return validation.Fail(fmt.Sprintf(
				"You cannot set the number of participants to be less or the same "+
					"as the current number. Current Participants number: %d.", current))
		}

		if *value > participantsCap {
			return validation.Fail("I don't allow this value. " +
				"Does this server even have that many active users?")
		}
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
