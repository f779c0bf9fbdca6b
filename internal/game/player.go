package game

import (
	"github.com/lox/unoserver/internal/deck"
)

// Player represents a seated player
type Player struct {
	name     string
	hand     []deck.Card
	isAuthor bool
	position *int
}

// NewPlayer creates a player with an empty hand
func NewPlayer(name string, isAuthor bool) *Player {
	return &Player{name: name, isAuthor: isAuthor}
}

// Name identifies the player within a game
func (p *Player) Name() string {
	return p.name
}

// IsAuthor reports whether the player created the game
func (p *Player) IsAuthor() bool {
	return p.isAuthor
}

// GiveCard adds a card to the hand
func (p *Player) GiveCard(card deck.Card) {
	p.hand = append(p.hand, card)
}

// DropAllCards empties the hand
func (p *Player) DropAllCards() {
	p.hand = nil
}

// PlayCardByEq removes and returns the first card in the hand equal to card
func (p *Player) PlayCardByEq(card deck.Card) (deck.Card, error) {
	idx := p.indexOf(card)
	if idx < 0 {
		return deck.Card{}, &NoSuchCardError{Player: p.name, Card: card}
	}

	played := p.hand[idx]
	p.hand = append(p.hand[:idx], p.hand[idx+1:]...)
	return played, nil
}

// HasCard reports whether the hand holds a card equal to card
func (p *Player) HasCard(card deck.Card) bool {
	return p.indexOf(card) >= 0
}

func (p *Player) indexOf(card deck.Card) int {
	for i, held := range p.hand {
		if held == card {
			return i
		}
	}
	return -1
}

// Cards returns a copy of the hand
func (p *Player) Cards() []deck.Card {
	cards := make([]deck.Card, len(p.hand))
	copy(cards, p.hand)
	return cards
}

// CardCount returns the hand size
func (p *Player) CardCount() int {
	return len(p.hand)
}

// IsFinished reports whether the hand is empty
func (p *Player) IsFinished() bool {
	return len(p.hand) == 0
}

// Position returns the finish rank, 0 for the first player out
func (p *Player) Position() (int, bool) {
	if p.position == nil {
		return 0, false
	}
	return *p.position, true
}

// SetPosition records the finish rank. It can be set once per game.
func (p *Player) SetPosition(rank int) error {
	if p.position != nil {
		return ErrPositionAlreadySet
	}
	p.position = &rank
	return nil
}

// ClearPosition forgets the finish rank of a previous game
func (p *Player) ClearPosition() {
	p.position = nil
}
