package host

import (
	"sort"

	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/games/bst"
	"github.com/madkingbot/officialgames/internal/games/lastpost"
	"github.com/madkingbot/officialgames/internal/games/yesorno"
	"github.com/madkingbot/officialgames/internal/model"
)

// registry statically maps each game kind to its constructor. This
// replaces runtime type discovery: adding a game means adding a line here.
var registry = map[model.GameKind]games.Constructor{
	model.KindBloodSweatTears: bst.New,
	model.KindLastPostWins:    lastpost.New,
	model.KindYesOrNo:         yesorno.New,
}

// displayNames give the voting menu its labels, in registry terms
var displayNames = map[model.GameKind]string{
	model.KindBloodSweatTears: "Blood Sweat Tears",
	model.KindLastPostWins:    "Last Post Wins",
	model.KindYesOrNo:         "Yes or No",
}

// RegisteredKinds returns every registered game kind in stable order
func RegisteredKinds() []model.GameKind {
	kinds := make([]model.GameKind, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DisplayName returns the menu label for a kind, or its raw value if
// unregistered
func DisplayName(kind model.GameKind) string {
	if name, ok := displayNames[kind]; ok {
		return name
	}
	return string(kind)
}

func newSession(kind model.GameKind, deps games.Deps) (games.Session, bool) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, false
	}
	return ctor(deps), true
}
