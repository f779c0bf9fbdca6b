package game

import (
	"fmt"
	"strings"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	ShowHands   bool   // Include the recipient's hand in status lines
	Perspective string // Player name for personalized formatting
}

// EventFormatter turns events into single human-readable lines
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format formats any event produced by Game
func (ef *EventFormatter) Format(event Event) string {
	switch e := event.(type) {
	case PlayCardEvent:
		return ef.FormatPlayCard(e)
	case DrawEvent:
		return ef.FormatDraw(e)
	case SkipEvent:
		return fmt.Sprintf("%s is skipped, %s to play", ef.name(e.Player), ef.name(e.Next))
	case FinishEvent:
		return fmt.Sprintf("%s finishes in place %d", ef.name(e.Player), e.Position+1)
	case StatusEvent:
		return ef.FormatStatus(e.Snapshot)
	default:
		return event.EventType().String()
	}
}

// FormatPlayCard formats a play card event
func (ef *EventFormatter) FormatPlayCard(event PlayCardEvent) string {
	if event.Next == event.Player {
		return fmt.Sprintf("%s plays %s and goes again", ef.name(event.Player), event.Card)
	}
	return fmt.Sprintf("%s plays %s, %s to play", ef.name(event.Player), event.Card, ef.name(event.Next))
}

// FormatDraw formats a draw event
func (ef *EventFormatter) FormatDraw(event DrawEvent) string {
	noun := "cards"
	if event.Count == 1 {
		noun = "card"
	}
	return fmt.Sprintf("%s draws %d %s, %s to play", ef.name(event.Player), event.Count, noun, ef.name(event.Next))
}

// FormatStatus formats a status snapshot as a one line summary
func (ef *EventFormatter) FormatStatus(s StatusSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "game %s %s", s.GameID, s.Status)
	if s.DiscardedCard != nil {
		fmt.Fprintf(&b, ", top %s", *s.DiscardedCard)
	}
	if s.CurrentPlayer != "" && s.Status == Running {
		fmt.Fprintf(&b, ", %s to play", ef.name(s.CurrentPlayer))
	}
	if len(s.FinishedPlayers) > 0 {
		fmt.Fprintf(&b, ", finished: %s", strings.Join(s.FinishedPlayers, ", "))
	}
	if ef.opts.ShowHands && len(s.Cards) > 0 {
		hand := make([]string, len(s.Cards))
		for i, card := range s.Cards {
			hand[i] = card.String()
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(hand, " "))
	}
	return b.String()
}

func (ef *EventFormatter) name(player string) string {
	if ef.opts.Perspective != "" && player == ef.opts.Perspective {
		return "you"
	}
	return player
}
