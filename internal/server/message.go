package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/unoserver/internal/deck"
	"github.com/lox/unoserver/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// HTTP request and response bodies

type PlayerNameData struct {
	Name string `json:"name"`
}

type JoinResponseData struct {
	GameID string `json:"gameID"`
	Server string `json:"server"`
	Token  string `json:"token"`
}

type BotAddedData struct {
	Name string `json:"name"`
}

type PlayCardData struct {
	Card     deck.Card   `json:"card"`
	NewColor *deck.Color `json:"newColor,omitempty"`
}

type DrawnCardsData struct {
	Cards []deck.Card `json:"cards"`
	Next  string      `json:"next"`
}

type NextPlayerData struct {
	Next string `json:"next"`
}

type ErrorData struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WebSocket notification payloads

type PlayCardNotification struct {
	Player string    `json:"player"`
	Next   string    `json:"next"`
	Card   deck.Card `json:"card"`
}

type DrawNotification struct {
	Player string `json:"player"`
	Next   string `json:"next"`
	Count  int    `json:"count"`
}

type FinishNotification struct {
	Player   string `json:"player"`
	Position int    `json:"position"`
}

type SkipNotification struct {
	Player string `json:"player"`
	Next   string `json:"next"`
}

// MessageFromEvent converts an engine event into the message pushed to clients
func MessageFromEvent(event game.Event) (*Message, error) {
	var data interface{}
	switch e := event.(type) {
	case game.StatusEvent:
		data = e.Snapshot
	case game.PlayCardEvent:
		data = PlayCardNotification{Player: e.Player, Next: e.Next, Card: e.Card}
	case game.DrawEvent:
		data = DrawNotification{Player: e.Player, Next: e.Next, Count: e.Count}
	case game.FinishEvent:
		data = FinishNotification{Player: e.Player, Position: e.Position}
	case game.SkipEvent:
		data = SkipNotification{Player: e.Player, Next: e.Next}
	default:
		return nil, fmt.Errorf("unknown event type %s", event.EventType())
	}

	msg, err := NewMessage(MessageType(event.EventType()), data)
	if err != nil {
		return nil, err
	}
	msg.Timestamp = event.Timestamp()
	return msg, nil
}
