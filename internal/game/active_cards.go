package game

import "github.com/lox/unoserver/internal/deck"

// ActiveCards is the chain of Skip, Draw2 or Draw4 cards the current player
// has to respond to. All cards in the chain share one symbol.
type ActiveCards struct {
	cards []deck.Card
}

// NewActiveCards returns an empty chain
func NewActiveCards() *ActiveCards {
	return &ActiveCards{}
}

// Push adds a card to the chain. An empty chain adopts the card's symbol,
// otherwise the symbol must match.
func (a *ActiveCards) Push(card deck.Card) error {
	if len(a.cards) > 0 && a.cards[0].Symbol != card.Symbol {
		return &StackError{Active: a.cards[0].Symbol, Pushed: card.Symbol}
	}
	a.cards = append(a.cards, card)
	return nil
}

// AreCardsActive reports whether a forced response is pending
func (a *ActiveCards) AreCardsActive() bool {
	return len(a.cards) > 0
}

// ActiveSymbol returns the symbol of the chain
func (a *ActiveCards) ActiveSymbol() (deck.Symbol, bool) {
	if len(a.cards) == 0 {
		return 0, false
	}
	return a.cards[0].Symbol, true
}

// SumActiveDrawCards returns how many cards the chain forces a player to
// draw. Only draw chains have a sum.
func (a *ActiveCards) SumActiveDrawCards() (int, bool) {
	symbol, ok := a.ActiveSymbol()
	if !ok || symbol.DrawAmount() == 0 {
		return 0, false
	}

	sum := 0
	for _, card := range a.cards {
		sum += card.Symbol.DrawAmount()
	}
	return sum, true
}

// Len returns the number of cards in the chain
func (a *ActiveCards) Len() int {
	return len(a.cards)
}

// Cards returns a copy of the chain
func (a *ActiveCards) Cards() []deck.Card {
	cards := make([]deck.Card, len(a.cards))
	copy(cards, a.cards)
	return cards
}

// Clear resolves the chain
func (a *ActiveCards) Clear() {
	a.cards = a.cards[:0]
}
