package game

import (
	"testing"

	"github.com/lox/unoserver/internal/deck"
	"github.com/stretchr/testify/assert"
)

func TestEventFormatter(t *testing.T) {
	top := deck.NewValueCard(deck.Red, 5)

	tests := []struct {
		name     string
		opts     FormattingOptions
		event    Event
		expected string
	}{
		{
			name:     "play card",
			event:    NewPlayCardEvent("alice", "bob", deck.NewCard(deck.Green, deck.Draw2)),
			expected: "alice plays g+2, bob to play",
		},
		{
			name:     "reverse with two players",
			event:    NewPlayCardEvent("alice", "alice", deck.NewCard(deck.Red, deck.Reverse)),
			expected: "alice plays rR and goes again",
		},
		{
			name:     "draw one",
			event:    NewDrawEvent("bob", "carol", 1),
			expected: "bob draws 1 card, carol to play",
		},
		{
			name:     "draw chain from perspective",
			opts:     FormattingOptions{Perspective: "bob"},
			event:    NewDrawEvent("bob", "carol", 4),
			expected: "you draw 4 cards, carol to play",
		},
		{
			name:     "skip",
			event:    NewSkipEvent("bob", "carol"),
			expected: "bob is skipped, carol to play",
		},
		{
			name:     "finish",
			event:    NewFinishEvent("alice", 0),
			expected: "alice finishes in place 1",
		},
		{
			name: "status with hand",
			opts: FormattingOptions{ShowHands: true},
			event: NewStatusEvent(StatusSnapshot{
				GameID:          "abc",
				Status:          Running,
				You:             "bob",
				CurrentPlayer:   "alice",
				FinishedPlayers: []string{},
				DiscardedCard:   &top,
				Cards:           deck.MustParseCards("r1 kW"),
			}),
			expected: "game abc RUNNING, top r5, alice to play [r1 kW]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewEventFormatter(tt.opts)
			assert.Equal(t, tt.expected, formatter.Format(tt.event))
		})
	}
}

func TestEventRecipients(t *testing.T) {
	status := NewStatusEvent(StatusSnapshot{You: "bob"})
	assert.Equal(t, "bob", status.Recipient())
	assert.Equal(t, EventTypeStatus, status.EventType())
	assert.False(t, status.Timestamp().IsZero())

	for _, event := range []Event{
		NewPlayCardEvent("a", "b", deck.NewValueCard(deck.Red, 1)),
		NewDrawEvent("a", "b", 1),
		NewFinishEvent("a", 0),
		NewSkipEvent("a", "b"),
	} {
		assert.Empty(t, event.Recipient(), event.EventType().String())
	}
}
