// Package host owns the single active game session: it runs the game
// vote, instantiates the winning game, forwards channel traffic into it
// and clears it when it ends. At most one session exists at a time.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/madkingbot/officialgames/internal/channel"
	"github.com/madkingbot/officialgames/internal/dependencies/clock"
	"github.com/madkingbot/officialgames/internal/dependencies/random"
	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/model"
)

const (
	startGameCommand     = "!game"
	emergencyStopCommand = "!emergency_stop"
)

// DefaultVotesToStart is how many distinct votes a game needs before it runs
const DefaultVotesToStart = 6

// Config wires a Host
type Config struct {
	BotID   model.UserID
	Channel channel.Channel
	Clock   clock.Clock
	Random  random.Random
	Logger  *slog.Logger

	// VotesToStart overrides DefaultVotesToStart when positive
	VotesToStart int

	// Constructors overrides the static registry, mainly for tests and
	// for games whose starting state comes from configuration
	Constructors map[model.GameKind]games.Constructor

	// PromptVote, when set, renders the game-selection menu on the
	// platform's native voting surface after the menu text is posted
	PromptVote func(ctx context.Context, kinds []model.GameKind) error
}

// Status is a snapshot of the host for the ops endpoint
type Status struct {
	ActiveGame string `json:"active_game"`
	VoteOpen   bool   `json:"vote_open"`
}

// Host is the session owner
type Host struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	voteOpen bool
	votes    map[model.GameKind]map[model.UserID]bool
	active   games.Session
}

// New creates a Host
func New(cfg Config) *Host {
	if cfg.VotesToStart <= 0 {
		cfg.VotesToStart = DefaultVotesToStart
	}
	return &Host{
		cfg:    cfg,
		logger: cfg.Logger,
		votes:  make(map[model.GameKind]map[model.UserID]bool),
	}
}

// HandleMessage processes one inbound channel message: host commands
// first, then forwarding into the active session. The gateway serializes
// calls.
func (h *Host) HandleMessage(ctx context.Context, msg model.Message) error {
	if msg.IsEmpty() || msg.Author == h.cfg.BotID {
		return nil
	}

	switch strings.TrimSpace(msg.Content) {
	case startGameCommand:
		return h.handleStartGame(ctx, msg)
	case emergencyStopCommand:
		return h.handleEmergencyStop(ctx, msg)
	}

	h.mu.Lock()
	active := h.active
	h.mu.Unlock()

	if active == nil {
		return nil
	}
	return active.ListenForAnswers(ctx, msg)
}

// HandleVote records one user's vote for a game kind; reaching the
// threshold starts the game
func (h *Host) HandleVote(ctx context.Context, voter model.UserID, kind model.GameKind) error {
	if voter == h.cfg.BotID {
		return nil
	}

	h.mu.Lock()
	if !h.voteOpen || h.active != nil {
		h.mu.Unlock()
		return nil
	}
	if !h.knownKind(kind) {
		h.mu.Unlock()
		return fmt.Errorf("vote for %q: %w", kind, model.ErrUnknownGame)
	}

	if h.votes[kind] == nil {
		h.votes[kind] = make(map[model.UserID]bool)
	}
	h.votes[kind][voter] = true
	count := len(h.votes[kind])
	reached := count >= h.cfg.VotesToStart
	if reached {
		h.voteOpen = false
		h.votes = make(map[model.GameKind]map[model.UserID]bool)
	}
	h.mu.Unlock()

	h.logger.Info("vote recorded",
		slog.String("game", string(kind)),
		slog.Int("count", count),
	)

	if !reached {
		return nil
	}
	return h.startGame(ctx, kind)
}

// SetPromptVote installs the vote-menu renderer after construction.
// The gateway needs the host to route votes and the host needs the
// gateway to render the menu, so one side has to be wired late.
func (h *Host) SetPromptVote(fn func(ctx context.Context, kinds []model.GameKind) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg.PromptVote = fn
}

// Stop terminates any active session, for process shutdown
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	active := h.active
	h.mu.Unlock()

	if active == nil {
		return nil
	}
	return active.End(ctx)
}

// Status reports the current host state
func (h *Host) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Status{ActiveGame: "", VoteOpen: h.voteOpen}
	if h.active != nil {
		s.ActiveGame = h.active.Name()
	}
	return s
}

func (h *Host) handleStartGame(ctx context.Context, msg model.Message) error {
	h.mu.Lock()
	voteOpen, gameOn := h.voteOpen, h.active != nil
	h.mu.Unlock()

	name := h.cfg.Channel.DisplayName(ctx, msg.Author)

	if gameOn {
		return h.sayNamed(ctx, name, "%s you fool, the game is already running!",
			"You fool, the game is already running!")
	}
	if voteOpen {
		return h.sayNamed(ctx, name, "%s you fool, voting for a game has already started!",
			"You fool, voting for a game has already started!")
	}

	isMod, err := h.cfg.Channel.IsModerator(ctx, msg.Author)
	if err != nil {
		return fmt.Errorf("moderator check: %w", err)
	}
	if !isMod {
		return nil
	}

	return h.openVote(ctx)
}

func (h *Host) openVote(ctx context.Context) error {
	kinds := RegisteredKinds()

	var menu strings.Builder
	menu.WriteString("Pick a game by voting for one of the numbers:\n")
	for i, kind := range kinds {
		fmt.Fprintf(&menu, "%d - %s\n", i+1, DisplayName(kind))
	}
	fmt.Fprintf(&menu, "\nAfter %d votes the chosen game will be started.", h.cfg.VotesToStart)

	if _, err := h.cfg.Channel.SendText(ctx, menu.String()); err != nil {
		return fmt.Errorf("posting vote menu: %w", err)
	}

	if h.cfg.PromptVote != nil {
		if err := h.cfg.PromptVote(ctx, kinds); err != nil {
			return fmt.Errorf("prompting vote: %w", err)
		}
	}

	h.mu.Lock()
	h.voteOpen = true
	h.votes = make(map[model.GameKind]map[model.UserID]bool)
	h.mu.Unlock()

	h.logger.Info("game vote opened", slog.Int("games", len(kinds)))
	return nil
}

func (h *Host) handleEmergencyStop(ctx context.Context, msg model.Message) error {
	h.mu.Lock()
	active := h.active
	h.mu.Unlock()

	if active == nil {
		return nil
	}

	isMod, err := h.cfg.Channel.IsModerator(ctx, msg.Author)
	if err != nil {
		return fmt.Errorf("moderator check: %w", err)
	}
	if !isMod {
		return nil
	}

	if _, err := h.cfg.Channel.SendText(ctx, "Stopping the game immediately!"); err != nil {
		return fmt.Errorf("announcing stop: %w", err)
	}

	h.logger.Warn("emergency stop", slog.String("game", active.Name()))
	return active.End(ctx)
}

func (h *Host) startGame(ctx context.Context, kind model.GameKind) error {
	if _, err := h.cfg.Channel.SendText(ctx,
		fmt.Sprintf("Game %s selected!", DisplayName(kind))); err != nil {
		return fmt.Errorf("announcing selection: %w", err)
	}

	deps := games.Deps{
		BotID:   h.cfg.BotID,
		Channel: h.cfg.Channel,
		Clock:   h.cfg.Clock,
		Random:  h.cfg.Random,
		Logger:  h.logger,
		Callbacks: games.Callbacks{
			OnStarted: func(ctx context.Context) {
				h.logger.Info("game started", slog.String("game", string(kind)))
			},
			OnEnded: func(ctx context.Context) {
				h.clearSession()
				h.logger.Info("game ended", slog.String("game", string(kind)))
			},
		},
	}

	session, ok := h.buildSession(kind, deps)
	if !ok {
		return fmt.Errorf("start %q: %w", kind, model.ErrUnknownGame)
	}

	h.mu.Lock()
	h.active = session
	h.mu.Unlock()

	if err := session.Run(ctx); err != nil {
		h.clearSession()
		return fmt.Errorf("running %q: %w", kind, err)
	}
	return nil
}

func (h *Host) knownKind(kind model.GameKind) bool {
	if _, ok := h.cfg.Constructors[kind]; ok {
		return true
	}
	_, ok := registry[kind]
	return ok
}

func (h *Host) buildSession(kind model.GameKind, deps games.Deps) (games.Session, bool) {
	if ctor, ok := h.cfg.Constructors[kind]; ok {
		return ctor(deps), true
	}
	return newSession(kind, deps)
}

// clearSession drops the session reference; teardown is the same
// operation that fired the terminal event, so ordering is preserved
func (h *Host) clearSession() {
	h.mu.Lock()
	h.active = nil
	h.voteOpen = false
	h.mu.Unlock()
}

func (h *Host) sayNamed(ctx context.Context, name, withName, anonymous string) error {
	text := anonymous
	if name != "" {
		text = fmt.Sprintf(withName, name)
	}
	if _, err := h.cfg.Channel.SendText(ctx, text); err != nil {
		return fmt.Errorf("rejecting start command: %w", err)
	}
	return nil
}
