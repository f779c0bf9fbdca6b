package server

import "github.com/lox/unoserver/internal/game"

// MessageType represents a WebSocket message type with type safety
type MessageType string

// Server to client messages. Game notifications reuse the engine's event
// type names so clients see one vocabulary.
const (
	MessageTypeStatus   MessageType = MessageType(game.EventTypeStatus)
	MessageTypePlayCard MessageType = MessageType(game.EventTypePlayCard)
	MessageTypeDraw     MessageType = MessageType(game.EventTypeDraw)
	MessageTypeFinish   MessageType = MessageType(game.EventTypeFinish)
	MessageTypeSkip     MessageType = MessageType(game.EventTypeSkip)
	MessageTypeError    MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
