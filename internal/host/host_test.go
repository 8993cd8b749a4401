package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/madkingbot/officialgames/internal/dependencies/mocks"
	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/testutil"
)

const (
	botID = model.UserID(1)
	modID = model.UserID(2)
	userA = model.UserID(10)
)

const fakeKind = model.GameKind("fake")

// fakeSession records lifecycle calls and forwards nothing
type fakeSession struct {
	callbacks games.Callbacks
	runs      int
	messages  []model.Message
	ends      int
}

var _ games.Session = (*fakeSession)(nil)

func (f *fakeSession) Name() string { return "Fake Game" }

func (f *fakeSession) Run(ctx context.Context) error {
	f.runs++
	if f.callbacks.OnStarted != nil {
		f.callbacks.OnStarted(ctx)
	}
	return nil
}

func (f *fakeSession) ListenForAnswers(ctx context.Context, msg model.Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeSession) End(ctx context.Context) error {
	f.ends++
	if f.callbacks.OnEnded != nil {
		f.callbacks.OnEnded(ctx)
	}
	return nil
}

type HostSuite struct {
	suite.Suite
	channel  *mocks.MockChannel
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	host     *Host
	session  *fakeSession
	prompted [][]model.GameKind
	ctx      context.Context
}

func TestHostSuite(t *testing.T) {
	suite.Run(t, new(HostSuite))
}

func (s *HostSuite) SetupTest() {
	s.channel = mocks.NewMockChannel()
	s.channel.Moderators[modID] = true
	s.channel.Names[modID] = "Meir"
	s.channel.Names[userA] = "Gwen"
	s.clock = mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.session = &fakeSession{}
	s.prompted = nil
	s.ctx = context.Background()

	s.host = New(Config{
		BotID:        botID,
		Channel:      s.channel,
		Clock:        s.clock,
		Random:       s.random,
		Logger:       testutil.NopLogger(),
		VotesToStart: 3,
		Constructors: map[model.GameKind]games.Constructor{
			fakeKind: func(deps games.Deps) games.Session {
				s.session.callbacks = deps.Callbacks
				return s.session
			},
		},
		PromptVote: func(ctx context.Context, kinds []model.GameKind) error {
			s.prompted = append(s.prompted, kinds)
			return nil
		},
	})
}

func (s *HostSuite) message(author model.UserID, content string) {
	msg := model.Message{ID: 100, Channel: 1, Author: author, Content: content}
	s.Require().NoError(s.host.HandleMessage(s.ctx, msg))
}

func (s *HostSuite) openVote() {
	s.message(modID, "!game")
	s.Require().True(s.host.Status().VoteOpen)
}

func (s *HostSuite) electFakeGame() {
	s.openVote()
	for voter := model.UserID(20); voter < 23; voter++ {
		s.Require().NoError(s.host.HandleVote(s.ctx, voter, fakeKind))
	}
	s.Require().Equal(1, s.session.runs)
}

// Vote opening tests

func (s *HostSuite) TestModeratorOpensTheVote() {
	s.message(modID, "!game")

	status := s.host.Status()
	s.True(status.VoteOpen)
	s.Empty(status.ActiveGame)
	s.Contains(s.channel.Sent()[0], "Pick a game by voting")
	s.Contains(s.channel.Sent()[0], "After 3 votes")
	s.Require().Len(s.prompted, 1)
	s.Equal(RegisteredKinds(), s.prompted[0])
}

func (s *HostSuite) TestMereMortalCannotOpenTheVote() {
	s.message(userA, "!game")

	s.False(s.host.Status().VoteOpen)
	s.Empty(s.channel.Sent())
}

func (s *HostSuite) TestStartCommandDuringVoteIsRejected() {
	s.openVote()

	s.message(modID, "!game")

	s.Contains(s.channel.LastSent(), "Meir you fool, voting for a game has already started!")
}

func (s *HostSuite) TestStartCommandDuringGameIsRejected() {
	s.electFakeGame()

	s.message(userA, "!game")

	s.Contains(s.channel.LastSent(), "Gwen you fool, the game is already running!")
}

func (s *HostSuite) TestStartCommandToleratesSurroundingWhitespace() {
	msg := model.Message{ID: 100, Channel: 1, Author: modID, Content: "  !game  "}
	s.Require().NoError(s.host.HandleMessage(s.ctx, msg))
	s.True(s.host.Status().VoteOpen)
}

// Voting tests

func (s *HostSuite) TestReachingTheThresholdStartsTheGame() {
	s.electFakeGame()

	status := s.host.Status()
	s.False(status.VoteOpen)
	s.Equal("Fake Game", status.ActiveGame)
	s.Contains(s.channel.LastSent(), "Game fake selected!")
}

func (s *HostSuite) TestDuplicateVotesCountOnce() {
	s.openVote()

	for i := 0; i < 5; i++ {
		s.Require().NoError(s.host.HandleVote(s.ctx, userA, fakeKind))
	}

	s.Equal(0, s.session.runs)
	s.True(s.host.Status().VoteOpen)
}

func (s *HostSuite) TestVotesSplitAcrossGamesDoNotStartAnything() {
	s.openVote()

	s.Require().NoError(s.host.HandleVote(s.ctx, 20, fakeKind))
	s.Require().NoError(s.host.HandleVote(s.ctx, 21, model.KindYesOrNo))
	s.Require().NoError(s.host.HandleVote(s.ctx, 22, model.KindBloodSweatTears))

	s.Equal(0, s.session.runs)
	s.True(s.host.Status().VoteOpen)
}

func (s *HostSuite) TestVoteForUnknownGameFails() {
	s.openVote()

	err := s.host.HandleVote(s.ctx, userA, model.GameKind("tic_tac_toe"))

	s.Require().ErrorIs(err, model.ErrUnknownGame)
}

func (s *HostSuite) TestVotesOutsideAnOpenVoteAreIgnored() {
	s.Require().NoError(s.host.HandleVote(s.ctx, userA, fakeKind))
	s.Equal(0, s.session.runs)
}

func (s *HostSuite) TestBotVotesAreIgnored() {
	s.openVote()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.host.HandleVote(s.ctx, botID, fakeKind))
	}
	s.Equal(0, s.session.runs)
}

// Forwarding tests

func (s *HostSuite) TestMessagesForwardToTheActiveGame() {
	s.electFakeGame()

	s.message(userA, "!fake something")

	s.Require().Len(s.session.messages, 1)
	s.Equal("!fake something", s.session.messages[0].Content)
}

func (s *HostSuite) TestMessagesWithoutAnActiveGameAreDropped() {
	s.message(userA, "hello")
	s.Empty(s.channel.Sent())
}

func (s *HostSuite) TestBotMessagesAreDropped() {
	s.electFakeGame()

	s.message(botID, "bot chatter")

	s.Empty(s.session.messages)
}

// Session teardown tests

func (s *HostSuite) TestSessionEndClearsTheHost() {
	s.electFakeGame()

	s.Require().NoError(s.session.End(s.ctx))

	status := s.host.Status()
	s.Empty(status.ActiveGame)
	s.False(status.VoteOpen)
}

func (s *HostSuite) TestNewVoteMayOpenAfterSessionEnds() {
	s.electFakeGame()
	s.Require().NoError(s.session.End(s.ctx))

	s.message(modID, "!game")

	s.True(s.host.Status().VoteOpen)
}

// Emergency stop tests

func (s *HostSuite) TestModeratorEmergencyStopsTheGame() {
	s.electFakeGame()

	s.message(modID, "!emergency_stop")

	s.Equal(1, s.session.ends)
	s.Contains(s.channel.LastSent(), "Stopping the game immediately!")
	s.Empty(s.host.Status().ActiveGame)
}

func (s *HostSuite) TestMereMortalCannotEmergencyStop() {
	s.electFakeGame()

	s.message(userA, "!emergency_stop")

	s.Equal(0, s.session.ends)
	s.Equal("Fake Game", s.host.Status().ActiveGame)
}

func (s *HostSuite) TestEmergencyStopWithoutAGameIsANoOp() {
	s.message(modID, "!emergency_stop")
	s.Empty(s.channel.Sent())
}

// Stop tests

func (s *HostSuite) TestStopEndsTheActiveSession() {
	s.electFakeGame()

	s.Require().NoError(s.host.Stop(s.ctx))

	s.Equal(1, s.session.ends)
}

func (s *HostSuite) TestStopWithoutASessionIsANoOp() {
	s.Require().NoError(s.host.Stop(s.ctx))
}
