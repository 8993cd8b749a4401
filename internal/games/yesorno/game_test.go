package yesorno

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/dependencies/mocks"
	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/testutil"
)

const (
	botID = model.UserID(1)
	modID = model.UserID(2)
	userA = model.UserID(10)
	userB = model.UserID(11)
)

const waitTimeout = 2 * time.Second

type GameSuite struct {
	suite.Suite
	channel *mocks.MockChannel
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	game    games.Session
	ctx     context.Context
	ended   chan struct{}
}

func TestGameSuite(t *testing.T) {
	suite.Run(t, new(GameSuite))
}

func (s *GameSuite) SetupTest() {
	s.channel = mocks.NewMockChannel()
	s.channel.Moderators[modID] = true
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.ctx = context.Background()
	s.ended = make(chan struct{})

	s.game = New(games.Deps{
		BotID:   botID,
		Channel: s.channel,
		Clock:   s.clock,
		Random:  s.random,
		Logger:  testutil.NopLogger(),
		Callbacks: games.Callbacks{
			OnEnded: func(ctx context.Context) { close(s.ended) },
		},
	})
}

func (s *GameSuite) TearDownTest() {
	_ = s.game.End(context.Background())
}

func (s *GameSuite) run() {
	s.Require().NoError(s.game.Run(s.ctx))
	s.Require().True(s.clock.WaitForSleep(1, waitTimeout), "timer never started sleeping")
}

func (s *GameSuite) post(author model.UserID, id model.MessageID, content string) {
	msg := model.Message{ID: id, Channel: 1, Author: author, Content: content}
	s.Require().NoError(s.game.ListenForAnswers(s.ctx, msg))
}

// postAsync delivers a message that will block until the reveal sweep
// finishes, so the test can fire the sweep's pacing sleeps meanwhile
func (s *GameSuite) postAsync(author model.UserID, id model.MessageID, content string) <-chan struct{} {
	done := make(chan struct{})
	msg := model.Message{ID: id, Channel: 1, Author: author, Content: content}
	go func() {
		defer close(done)
		s.NoError(s.game.ListenForAnswers(s.ctx, msg))
	}()
	return done
}

// fireSweepSleeps drives n pacing sleeps of an in-flight reveal sweep.
// It fires only sleeps of the sweep's pacing duration, so a game timer
// not yet cancelled can never be fired by mistake.
func (s *GameSuite) fireSweepSleeps(n int) {
	deadline := time.Now().Add(waitTimeout)
	fired := 0
	for fired < n {
		if time.Now().After(deadline) {
			s.FailNow("sweep sleeps never arrived", "fired %d of %d", fired, n)
		}
		pending := s.clock.PendingSleeps()
		if len(pending) > 0 && pending[0] == sweepReactionDelay {
			s.Require().True(s.clock.FireSleep())
			fired++
			continue
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *GameSuite) waitDone(done <-chan struct{}) {
	select {
	case <-done:
	case <-time.After(waitTimeout):
		s.FailNow("message handling never returned")
	}
}

func (s *GameSuite) waitEnded() {
	select {
	case <-s.ended:
	case <-time.After(waitTimeout):
		s.FailNow("game never ended")
	}
}

func (s *GameSuite) hasReaction(id model.MessageID, emoji string) bool {
	for _, r := range s.channel.Reactions() {
		if r.Message == id && r.Emoji == emoji {
			return true
		}
	}
	return false
}

// Run tests

func (s *GameSuite) TestRunPostsRulesAndStartsTheDefaultTimer() {
	s.run()

	s.Contains(s.channel.LastSent(), "Yes or No?")
	s.Contains(s.channel.LastSent(), "announced after 24 hours")
	s.Equal([]time.Duration{24 * time.Hour}, s.clock.PendingSleeps())
}

// Answer tests

func (s *GameSuite) TestAnswersGetFlagReactions() {
	s.run()

	s.post(userA, 201, "!yon yes")
	s.post(userB, 202, "!yon no")

	s.True(s.hasReaction(201, channel.EmojiYes))
	s.True(s.hasReaction(202, channel.EmojiNo))
}

func (s *GameSuite) TestAnswerIsCaseInsensitive() {
	s.run()

	s.post(userA, 201, "!yon YES")

	s.True(s.hasReaction(201, channel.EmojiYes))
}

func (s *GameSuite) TestIdenticalRepeatIsRejected() {
	s.run()
	s.post(userA, 201, "!yon yes")

	s.post(userA, 202, "!yon yes")

	s.Contains(s.channel.LastSent(), "Don't waste my time you fool!")
	s.Len(s.channel.Reactions(), 1)
}

func (s *GameSuite) TestChangedAnswerOverwrites() {
	s.run()
	s.post(userA, 201, "!yon yes")

	s.post(userA, 202, "!yon no")

	s.True(s.hasReaction(202, channel.EmojiNo))
}

func (s *GameSuite) TestNonYesNoAnswerRejected() {
	s.run()

	s.post(userA, 201, "!yon maybe")

	s.Contains(s.channel.LastSent(), "All you have to do is write `Yes` or `No`!")
	s.Empty(s.channel.Reactions())
}

func (s *GameSuite) TestUnrelatedChatterIsIgnored() {
	s.run()
	before := len(s.channel.Sent())

	s.post(userA, 201, "what a lovely day")

	s.Len(s.channel.Sent(), before)
}

// Reveal tests

func (s *GameSuite) TestExpiryRevealsAndSweepsAllAnswers() {
	s.run()
	s.post(userA, 201, "!yon yes")
	s.post(userB, 202, "!yon no")

	// The revealed answer is "yes"
	s.random.QueueIntn(1)
	s.Require().True(s.clock.FireSleep())
	s.fireSweepSleeps(2)
	s.waitEnded()

	s.True(s.hasReaction(201, channel.EmojiCheckmark))
	s.True(s.hasReaction(202, channel.EmojiCross))

	var answerText string
	for _, text := range s.channel.Sent() {
		if text == "My answer is... YES" {
			answerText = text
		}
	}
	s.NotEmpty(answerText)
	s.Contains(s.channel.LastSent(), "Yes or No is over.")
}

func (s *GameSuite) TestRevealWithNoParticipantsStillFinishes() {
	s.run()

	s.Require().True(s.clock.FireSleep())
	s.waitEnded()

	s.Contains(s.channel.LastSent(), "Yes or No is over.")
}

// End tests

func (s *GameSuite) TestEndCancelsTheTimerWithoutRevealing() {
	s.run()
	s.post(userA, 201, "!yon yes")

	s.Require().NoError(s.game.End(s.ctx))
	s.waitEnded()

	s.Empty(s.clock.PendingSleeps())
	for _, text := range s.channel.Sent() {
		s.NotContains(text, "My answer is...")
	}
	s.Contains(s.channel.LastSent(), "Yes or No is over.")
}

func (s *GameSuite) TestAnswersAfterEndAreIgnored() {
	s.run()
	s.Require().NoError(s.game.End(s.ctx))
	s.waitEnded()
	before := len(s.channel.Sent())

	s.post(userA, 300, "!yon yes")

	s.Len(s.channel.Sent(), before)
}

// finish_game_in tests

func (s *GameSuite) TestModeratorReplacesTheTimer() {
	s.run()

	s.post(modID, 201, "!yon_sc finish_game_in 5[min]")

	s.Contains(s.channel.LastSent(), "Timer set to 5[mins]")
	s.Require().True(s.clock.WaitForSleep(1, waitTimeout))
	s.Equal([]time.Duration{5 * time.Minute}, s.clock.PendingSleeps())
}

func (s *GameSuite) TestZeroDurationRevealsImmediately() {
	s.run()
	s.post(userA, 201, "!yon no")

	done := s.postAsync(modID, 202, "!yon_sc finish_game_in 0")
	s.fireSweepSleeps(1)
	s.waitDone(done)
	s.waitEnded()

	// The default random answer is "no", so the stored answer matches
	s.True(s.hasReaction(201, channel.EmojiCheckmark))
	s.Contains(s.channel.LastSent(), "Yes or No is over.")
}

func (s *GameSuite) TestMereMortalCannotReplaceTheTimer() {
	s.run()

	s.post(userA, 201, "!yon_sc finish_game_in 5[min]")

	s.Contains(s.channel.LastSent(), "mere mortal")
	s.Equal([]time.Duration{24 * time.Hour}, s.clock.PendingSleeps())
}

// change_participants_number tests

func (s *GameSuite) TestCapacityReachedEndsTheGame() {
	s.run()
	s.post(modID, 201, "!yon_sc change_participants_number 1")
	s.Require().Contains(s.channel.LastSent(), "from 500 to 1")
	s.post(userA, 202, "!yon yes")

	done := s.postAsync(userB, 203, "!yon no")
	s.fireSweepSleeps(1)
	s.waitDone(done)
	s.waitEnded()

	var capacityText string
	for _, text := range s.channel.Sent() {
		if text == "Haha! You are unlucky, I decided to finish this game earlier due to too much interest." {
			capacityText = text
		}
	}
	s.NotEmpty(capacityText)
	s.Contains(s.channel.LastSent(), "Yes or No is over.")
}

func (s *GameSuite) TestExistingParticipantMayAnswerAtCapacity() {
	s.run()
	s.post(modID, 201, "!yon_sc change_participants_number 1")
	s.post(userA, 202, "!yon yes")

	// userA is already in, so changing their answer does not trip capacity
	s.post(userA, 203, "!yon no")

	s.True(s.hasReaction(203, channel.EmojiNo))
}

func (s *GameSuite) TestParticipantsNumberMustExceedCurrentCount() {
	s.run()
	s.post(userA, 201, "!yon yes")
	s.post(userB, 202, "!yon no")

	s.post(modID, 203, "!yon_sc change_participants_number 2")

	s.Contains(s.channel.LastSent(), "Current Participants number: 2.")
}

func (s *GameSuite) TestParticipantsNumberHasAHardCap() {
	s.run()

	s.post(modID, 201, "!yon_sc change_participants_number 1501")

	s.Contains(s.channel.LastSent(), "I don't allow this value.")
}

func (s *GameSuite) TestParticipantsNumberMustBePositive() {
	s.run()

	s.post(modID, 201, "!yon_sc change_participants_number 0")

	s.Contains(s.channel.LastSent(), "What are you trying to do?")
}

func (s *GameSuite) TestMereMortalCannotChangeParticipants() {
	s.run()

	s.post(userA, 201, "!yon_sc change_participants_number 10")

	s.Contains(s.channel.LastSent(), "mere mortal")
}

func (s *GameSuite) TestMangledCommandGetsGenericReply() {
	s.run()

	s.post(userA, 201, "change the participants number to 10")

	s.Contains(s.channel.LastSent(), "This server will fall")
}
