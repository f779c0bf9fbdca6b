package deck

import (
	rand "math/rand/v2"
)

// TotalCards is the size of the full card set.
const TotalCards = 108

// Deck holds the draw pile and the discard pile. The last element of each
// slice is its top card.
type Deck struct {
	drawPile    []Card
	discardPile []Card
	rng         *rand.Rand
}

// NewDeck creates the full 108 card set and shuffles it into the draw pile
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		drawPile:    FullSet(),
		discardPile: make([]Card, 0, TotalCards),
		rng:         rng,
	}
	d.shuffle(d.drawPile)
	return d
}

// NewDeckFromPiles creates a deck with the given piles, top cards last.
// Useful for deterministic setups.
func NewDeckFromPiles(drawPile, discardPile []Card, rng *rand.Rand) *Deck {
	d := &Deck{
		drawPile:    append(make([]Card, 0, len(drawPile)), drawPile...),
		discardPile: append(make([]Card, 0, len(discardPile)), discardPile...),
		rng:         rng,
	}
	return d
}

// FullSet returns every card of the game in a fixed order
func FullSet() []Card {
	cards := make([]Card, 0, TotalCards)
	for _, color := range Colors {
		cards = append(cards, NewValueCard(color, 0))
		for n := 1; n <= 9; n++ {
			cards = append(cards, NewValueCard(color, n), NewValueCard(color, n))
		}
		for _, symbol := range []Symbol{Skip, Reverse, Draw2} {
			cards = append(cards, NewCard(color, symbol), NewCard(color, symbol))
		}
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, NewCard(Black, Wild), NewCard(Black, Draw4))
	}
	return cards
}

func (d *Deck) shuffle(cards []Card) {
	if d.rng == nil {
		rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
		return
	}
	d.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// Draw removes and returns the top card of the draw pile. When the draw pile
// is empty, every discarded card except the top one is shuffled back into it
// first. Returns false only when no card can be drawn at all.
func (d *Deck) Draw() (Card, bool) {
	if len(d.drawPile) == 0 {
		d.recycleDiscardPile()
	}
	if len(d.drawPile) == 0 {
		return Card{}, false
	}

	last := len(d.drawPile) - 1
	card := d.drawPile[last]
	d.drawPile = d.drawPile[:last]
	return card, true
}

func (d *Deck) recycleDiscardPile() {
	if len(d.discardPile) < 2 {
		return
	}

	last := len(d.discardPile) - 1
	top := d.discardPile[last]
	for _, card := range d.discardPile[:last] {
		d.drawPile = append(d.drawPile, card.Reset())
	}
	d.discardPile = append(d.discardPile[:0], top)
	d.shuffle(d.drawPile)
}

// Play puts a card on top of the discard pile
func (d *Deck) Play(card Card) {
	d.discardPile = append(d.discardPile, card)
}

// TopDiscardCard returns the top of the discard pile. The discard pile is
// never empty once a game is dealt; calling this on an empty pile panics.
func (d *Deck) TopDiscardCard() Card {
	top, ok := d.PeekTop()
	if !ok {
		panic("deck: discard pile is empty")
	}
	return top
}

// PeekTop returns the top of the discard pile, if any
func (d *Deck) PeekTop() (Card, bool) {
	if len(d.discardPile) == 0 {
		return Card{}, false
	}
	return d.discardPile[len(d.discardPile)-1], true
}

// FlipStartingCard moves cards from the draw pile onto the discard pile until
// a value card is on top. Action and wild cards met on the way go to the
// bottom of the draw pile.
func (d *Deck) FlipStartingCard() (Card, bool) {
	for attempts := len(d.drawPile); attempts > 0; attempts-- {
		card, ok := d.Draw()
		if !ok {
			return Card{}, false
		}
		if card.Symbol == Value {
			d.Play(card)
			return card, true
		}
		d.drawPile = append([]Card{card}, d.drawPile...)
	}
	return Card{}, false
}

// DrawPileSize returns the number of cards left to draw
func (d *Deck) DrawPileSize() int {
	return len(d.drawPile)
}

// DiscardPileSize returns the number of played cards
func (d *Deck) DiscardPileSize() int {
	return len(d.discardPile)
}

// Total returns the number of cards held by both piles
func (d *Deck) Total() int {
	return len(d.drawPile) + len(d.discardPile)
}

// DiscardPile returns a copy of the discard pile, top card last
func (d *Deck) DiscardPile() []Card {
	cards := make([]Card, len(d.discardPile))
	copy(cards, d.discardPile)
	return cards
}
