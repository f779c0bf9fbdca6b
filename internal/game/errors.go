package game

import (
	"errors"
	"fmt"

	"github.com/lox/unoserver/internal/deck"
)

// ErrInvariantViolation is wrapped by every error that valid call sequences
// cannot produce. Seeing one means the engine or its caller has a bug.
var ErrInvariantViolation = errors.New("game: invariant violation")

// Lifecycle errors
var (
	ErrGameAlreadyStarted        = errors.New("game is already running")
	ErrDeckEmptyWhenStartingGame = errors.New("deck ran out of cards while dealing")
	ErrGameNotRunning            = errors.New("game is not running")
)

// Turn errors
var ErrNoOneIsPlaying = fmt.Errorf("%w: no current player", ErrInvariantViolation)

// Draw and skip errors
var (
	ErrPlayerCanPlayInstead = errors.New("player has a card to play instead")
	ErrNoSkipToAccept       = errors.New("there is no skip to accept")
)

// ErrPositionAlreadySet is returned when a finish rank is assigned twice
var ErrPositionAlreadySet = fmt.Errorf("%w: finish position already set", ErrInvariantViolation)

// PlayerOutOfTurnError is returned when a player acts while it is not their turn
type PlayerOutOfTurnError struct {
	Player string
}

func (e *PlayerOutOfTurnError) Error() string {
	return fmt.Sprintf("it is not %s's turn", e.Player)
}

// NoSuchPlayerError is returned when a name is not seated in the game
type NoSuchPlayerError struct {
	Player string
}

func (e *NoSuchPlayerError) Error() string {
	return fmt.Sprintf("player %s is not in the game", e.Player)
}

// NoSuchCardError is returned when a player claims a card they do not hold
type NoSuchCardError struct {
	Player string
	Card   deck.Card
}

func (e *NoSuchCardError) Error() string {
	return fmt.Sprintf("player %s does not hold %s", e.Player, e.Card)
}

// CardCannotBePlayedError is returned when a card is not legal against the
// current top card or active chain
type CardCannotBePlayedError struct {
	Card deck.Card
	Top  deck.Card
}

func (e *CardCannotBePlayedError) Error() string {
	return fmt.Sprintf("card %s cannot be played on %s", e.Card, e.Top)
}

// InvalidColorError is returned when a wild card is given a color it cannot take
type InvalidColorError struct {
	Color deck.Color
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("cannot choose %s as the new color", e.Color)
}

// PlayerMustPlayInsteadError is returned when a player tries to draw against
// an active skip chain
type PlayerMustPlayInsteadError struct {
	Top deck.Card
}

func (e *PlayerMustPlayInsteadError) Error() string {
	return fmt.Sprintf("player must respond to %s instead of drawing", e.Top)
}

// StackError is returned when a card of another symbol is pushed onto an
// active chain
type StackError struct {
	Active deck.Symbol
	Pushed deck.Symbol
}

func (e *StackError) Error() string {
	return fmt.Sprintf("cannot stack %s on active %s cards", e.Pushed, e.Active)
}

func (e *StackError) Unwrap() error {
	return ErrInvariantViolation
}
