package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/unoserver/internal/deck"
)

// RandBot plays a uniformly random legal card with a random color
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Name() string { return "rand" }

func (r *RandBot) ChooseMove(s Situation) Move {
	if len(s.Playable) == 0 {
		return s.forcedMove()
	}

	card := s.Playable[r.rng.IntN(len(s.Playable))]
	move := Move{Kind: Play, Card: card, Reasoning: "rand-bot random card"}
	if card.ShouldBeBlack() {
		color := deck.Colors[r.rng.IntN(len(deck.Colors))]
		move.NewColor = &color
	}
	return move
}
