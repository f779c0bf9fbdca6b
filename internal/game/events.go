package game

import (
	"time"

	"github.com/lox/unoserver/internal/deck"
)

// EventType represents a notification type with type safety
type EventType string

const (
	EventTypeStatus   EventType = "status"
	EventTypePlayCard EventType = "play_card"
	EventTypeDraw     EventType = "draw"
	EventTypeFinish   EventType = "finish"
	EventTypeSkip     EventType = "skip"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is a notification the engine produces for seated players. The engine
// never delivers events itself; callers drain them with Game.DrainEvents.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	// Recipient is the single player the event is meant for, or "" when
	// every seated player should receive it.
	Recipient() string
}

// PlayerSummary is the public view of a seated player
type PlayerSummary struct {
	Name     string `json:"name"`
	Cards    int    `json:"cards"`
	IsAuthor bool   `json:"isAuthor"`
	Position *int   `json:"position,omitempty"`
}

// StatusSnapshot is the state of a game as seen by one player
type StatusSnapshot struct {
	GameID          string          `json:"gameID"`
	Status          Status          `json:"status"`
	You             string          `json:"you"`
	Author          string          `json:"author"`
	Players         []PlayerSummary `json:"players"`
	CurrentPlayer   string          `json:"currentPlayer,omitempty"`
	FinishedPlayers []string        `json:"finishedPlayers"`
	IsClockwise     bool            `json:"isClockwise"`
	DiscardedCard   *deck.Card      `json:"discardedCard,omitempty"`
	Cards           []deck.Card     `json:"cards"`
}

// StatusEvent carries a personalized snapshot
type StatusEvent struct {
	Snapshot  StatusSnapshot
	timestamp time.Time
}

func (e StatusEvent) EventType() EventType { return EventTypeStatus }
func (e StatusEvent) Timestamp() time.Time { return e.timestamp }
func (e StatusEvent) Recipient() string    { return e.Snapshot.You }

// NewStatusEvent creates a status event for the snapshot's recipient
func NewStatusEvent(snapshot StatusSnapshot) StatusEvent {
	return StatusEvent{Snapshot: snapshot, timestamp: time.Now()}
}

// PlayCardEvent is published when a card is played
type PlayCardEvent struct {
	Player    string
	Next      string
	Card      deck.Card
	timestamp time.Time
}

func (e PlayCardEvent) EventType() EventType { return EventTypePlayCard }
func (e PlayCardEvent) Timestamp() time.Time { return e.timestamp }
func (e PlayCardEvent) Recipient() string    { return "" }

// NewPlayCardEvent creates a new play card event
func NewPlayCardEvent(player, next string, card deck.Card) PlayCardEvent {
	return PlayCardEvent{Player: player, Next: next, Card: card, timestamp: time.Now()}
}

// DrawEvent is published when a player draws. Only the count is public.
type DrawEvent struct {
	Player    string
	Next      string
	Count     int
	timestamp time.Time
}

func (e DrawEvent) EventType() EventType { return EventTypeDraw }
func (e DrawEvent) Timestamp() time.Time { return e.timestamp }
func (e DrawEvent) Recipient() string    { return "" }

// NewDrawEvent creates a new draw event
func NewDrawEvent(player, next string, count int) DrawEvent {
	return DrawEvent{Player: player, Next: next, Count: count, timestamp: time.Now()}
}

// FinishEvent is published when a player empties their hand
type FinishEvent struct {
	Player    string
	Position  int
	timestamp time.Time
}

func (e FinishEvent) EventType() EventType { return EventTypeFinish }
func (e FinishEvent) Timestamp() time.Time { return e.timestamp }
func (e FinishEvent) Recipient() string    { return "" }

// NewFinishEvent creates a new finish event
func NewFinishEvent(player string, position int) FinishEvent {
	return FinishEvent{Player: player, Position: position, timestamp: time.Now()}
}

// SkipEvent is published when a player accepts a skip chain
type SkipEvent struct {
	Player    string
	Next      string
	timestamp time.Time
}

func (e SkipEvent) EventType() EventType { return EventTypeSkip }
func (e SkipEvent) Timestamp() time.Time { return e.timestamp }
func (e SkipEvent) Recipient() string    { return "" }

// NewSkipEvent creates a new skip event
func NewSkipEvent(player, next string) SkipEvent {
	return SkipEvent{Player: player, Next: next, timestamp: time.Now()}
}
