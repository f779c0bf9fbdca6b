// Package bot chooses moves for computer-controlled players.
package bot

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/unoserver/internal/deck"
)

// Strategy decides a move for a situation. A returned Play move must name
// one of the situation's playable cards.
type Strategy interface {
	Name() string
	ChooseMove(s Situation) Move
}

// Strategies lists the strategy names accepted by New
var Strategies = []string{"smart", "rand"}

// New creates a strategy by name
func New(name string, rng *rand.Rand, logger *log.Logger) (Strategy, error) {
	switch name {
	case "smart", "":
		return NewBot(logger), nil
	case "rand":
		return NewRandBot(rng, logger), nil
	default:
		return nil, fmt.Errorf("unknown bot strategy %q", name)
	}
}

// Bot plays the card that keeps the most of its hand playable afterwards,
// holds wild cards back and names the color it holds most of.
type Bot struct {
	logger *log.Logger
}

// NewBot creates a new bot
func NewBot(logger *log.Logger) *Bot {
	return &Bot{logger: logger.WithPrefix("bot")}
}

func (b *Bot) Name() string { return "smart" }

func (b *Bot) ChooseMove(s Situation) Move {
	if len(s.Playable) == 0 {
		return s.forcedMove()
	}

	// during a chain only the chain's symbol is playable, any copy will do
	if s.ChainActive {
		return b.play(s, s.Playable[0], "stacking onto the chain")
	}

	best, bestScore := s.Playable[0], -1<<31
	for _, card := range s.Playable {
		score := b.score(s, card)
		if score > bestScore {
			best, bestScore = card, score
		}
	}

	b.logger.Debug("Bot decision", "player", s.Player, "card", best, "score", bestScore, "playable", len(s.Playable))
	return b.play(s, best, fmt.Sprintf("best of %d playable cards", len(s.Playable)))
}

// score prefers cards that leave many follow-up plays of the same color,
// attacks opponents close to finishing and saves wild cards.
func (b *Bot) score(s Situation, card deck.Card) int {
	score := 0
	for _, held := range s.Hand {
		if held == card {
			continue
		}
		if held.Color == card.Color || held.IsBlack() {
			score += 2
		}
	}

	if card.IsBlack() {
		score -= 10
	}

	if opponentCloseToFinishing(s) {
		switch card.Symbol {
		case deck.Draw4:
			score += 20
		case deck.Draw2, deck.Skip:
			score += 15
		}
	}
	return score
}

func opponentCloseToFinishing(s Situation) bool {
	for _, count := range s.Opponents {
		if count <= 2 {
			return true
		}
	}
	return false
}

func (b *Bot) play(s Situation, card deck.Card, reasoning string) Move {
	move := Move{Kind: Play, Card: card, Reasoning: reasoning}
	if card.ShouldBeBlack() {
		color := MostHeldColor(s.Hand, card)
		move.NewColor = &color
	}
	return move
}

// MostHeldColor returns the color that appears most in hand, ignoring the
// card about to be played. Ties go to the first color in deck.Colors.
func MostHeldColor(hand []deck.Card, playing deck.Card) deck.Color {
	counts := make(map[deck.Color]int)
	skipped := false
	for _, card := range hand {
		if card == playing && !skipped {
			skipped = true
			continue
		}
		if !card.IsBlack() {
			counts[card.Color]++
		}
	}

	best := deck.Colors[0]
	for _, color := range deck.Colors {
		if counts[color] > counts[best] {
			best = color
		}
	}
	return best
}
