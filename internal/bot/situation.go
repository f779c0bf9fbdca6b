package bot

import (
	"fmt"

	"github.com/lox/unoserver/internal/deck"
	"github.com/lox/unoserver/internal/game"
)

// MoveKind is the kind of action a bot takes on its turn
type MoveKind int

const (
	Play MoveKind = iota
	Draw
	AcceptSkip
)

func (k MoveKind) String() string {
	switch k {
	case Play:
		return "play"
	case Draw:
		return "draw"
	case AcceptSkip:
		return "accept-skip"
	default:
		return "?"
	}
}

// Move is a bot's decision. Card and NewColor are only set for Play.
type Move struct {
	Kind      MoveKind
	Card      deck.Card
	NewColor  *deck.Color
	Reasoning string
}

// Situation is everything a bot may look at when deciding: its own hand,
// the cards it may legally play and the pending chain, if any.
type Situation struct {
	Player      string
	Hand        []deck.Card
	Playable    []deck.Card
	Top         deck.Card
	ChainActive bool
	ChainSymbol deck.Symbol
	Opponents   map[string]int // hand sizes of unfinished opponents
}

// NewSituation builds the situation of the named player in g
func NewSituation(g *game.Game, player string) (Situation, error) {
	p, ok := g.FindPlayer(player)
	if !ok {
		return Situation{}, &game.NoSuchPlayerError{Player: player}
	}

	s := Situation{
		Player:    player,
		Hand:      p.Cards(),
		Opponents: make(map[string]int),
	}
	if top, ok := g.Deck().PeekTop(); ok {
		s.Top = top
	}
	s.ChainSymbol, s.ChainActive = g.ActiveCards().ActiveSymbol()

	for _, card := range s.Hand {
		if g.CanPlayCard(card) {
			s.Playable = append(s.Playable, card)
		}
	}

	for _, other := range g.Players() {
		if other.Name() != player && !other.IsFinished() {
			s.Opponents[other.Name()] = other.CardCount()
		}
	}
	return s, nil
}

// forcedMove returns the move to take when nothing can be played
func (s Situation) forcedMove() Move {
	if s.ChainActive && s.ChainSymbol == deck.Skip {
		return Move{Kind: AcceptSkip, Reasoning: "no skip to answer with"}
	}
	return Move{Kind: Draw, Reasoning: "nothing playable"}
}

// Apply performs move for player in g
func Apply(g *game.Game, player string, move Move) error {
	switch move.Kind {
	case Play:
		return g.PlayCard(player, move.Card, move.NewColor)
	case Draw:
		_, err := g.DrawCards(player)
		return err
	case AcceptSkip:
		return g.AcceptSkip(player)
	default:
		return fmt.Errorf("unknown move %d", move.Kind)
	}
}
