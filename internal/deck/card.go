package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Color represents a card color
type Color int

const (
	Red Color = iota
	Yellow
	Green
	Blue
	Black
)

// Colors lists the colors a wild card can be morphed into
var Colors = []Color{Red, Yellow, Green, Blue}

// String returns the wire name of a color
func (c Color) String() string {
	switch c {
	case Red:
		return "RED"
	case Yellow:
		return "YELLOW"
	case Green:
		return "GREEN"
	case Blue:
		return "BLUE"
	case Black:
		return "BLACK"
	default:
		return "?"
	}
}

// Letter returns the single-letter notation used by ParseCard
func (c Color) Letter() string {
	switch c {
	case Red:
		return "r"
	case Yellow:
		return "y"
	case Green:
		return "g"
	case Blue:
		return "b"
	case Black:
		return "k"
	default:
		return "?"
	}
}

// ParseColor parses a wire color name (case insensitive)
func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(s) {
	case "RED":
		return Red, nil
	case "YELLOW":
		return Yellow, nil
	case "GREEN":
		return Green, nil
	case "BLUE":
		return Blue, nil
	case "BLACK":
		return Black, nil
	}
	return 0, fmt.Errorf("invalid color %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	if c < Red || c > Black {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Symbol represents what is printed on a card
type Symbol int

const (
	Value Symbol = iota
	Skip
	Reverse
	Draw2
	Draw4
	Wild
)

// String returns the wire name of a symbol
func (s Symbol) String() string {
	switch s {
	case Value:
		return "VALUE"
	case Skip:
		return "SKIP"
	case Reverse:
		return "REVERSE"
	case Draw2:
		return "DRAW2"
	case Draw4:
		return "DRAW4"
	case Wild:
		return "WILD"
	default:
		return "?"
	}
}

// ParseSymbol parses a wire symbol name (case insensitive)
func ParseSymbol(s string) (Symbol, error) {
	switch strings.ToUpper(s) {
	case "VALUE":
		return Value, nil
	case "SKIP":
		return Skip, nil
	case "REVERSE":
		return Reverse, nil
	case "DRAW2":
		return Draw2, nil
	case "DRAW4":
		return Draw4, nil
	case "WILD":
		return Wild, nil
	}
	return 0, fmt.Errorf("invalid card type %q", s)
}

// IsStackable reports whether cards of this symbol form forced-response chains
func (s Symbol) IsStackable() bool {
	return s == Skip || s == Draw2 || s == Draw4
}

// DrawAmount returns how many cards one card of this symbol forces the next player to draw
func (s Symbol) DrawAmount() int {
	switch s {
	case Draw2:
		return 2
	case Draw4:
		return 4
	default:
		return 0
	}
}

// ErrNotBlackCard is returned when morphing a card that is not from the wild family
var ErrNotBlackCard = errors.New("only wild cards can change color")

// ErrMorphToBlack is returned when a wild card is asked to become black again
var ErrMorphToBlack = errors.New("wild cards cannot be morphed into black")

// Card represents an UNO card. Number is only meaningful for Value cards.
type Card struct {
	Color  Color
	Symbol Symbol
	Number int
}

// NewValueCard creates a numbered card
func NewValueCard(color Color, number int) Card {
	return Card{Color: color, Symbol: Value, Number: number}
}

// NewCard creates an action or wild card
func NewCard(color Color, symbol Symbol) Card {
	return Card{Color: color, Symbol: symbol}
}

// ShouldBeBlack reports whether the card belongs to the wild family
func (c Card) ShouldBeBlack() bool {
	return c.Symbol == Wild || c.Symbol == Draw4
}

// IsBlack reports whether the card currently has no chosen color
func (c Card) IsBlack() bool {
	return c.Color == Black
}

// MorphBlackCard returns a copy of a wild-family card recolored to color.
func (c Card) MorphBlackCard(color Color) (Card, error) {
	if !c.ShouldBeBlack() {
		return c, ErrNotBlackCard
	}
	if color == Black {
		return c, ErrMorphToBlack
	}
	c.Color = color
	return c, nil
}

// Reset returns the card as it is dealt: wild-family cards go back to black.
func (c Card) Reset() Card {
	if c.ShouldBeBlack() {
		c.Color = Black
	}
	return c
}

// String returns the short notation of a card (e.g., "r7", "gS", "k+4")
func (c Card) String() string {
	var symbol string
	switch c.Symbol {
	case Value:
		symbol = fmt.Sprintf("%d", c.Number)
	case Skip:
		symbol = "S"
	case Reverse:
		symbol = "R"
	case Draw2:
		symbol = "+2"
	case Draw4:
		symbol = "+4"
	case Wild:
		symbol = "W"
	default:
		symbol = "?"
	}
	return c.Color.Letter() + symbol
}

type cardJSON struct {
	Color  Color  `json:"color"`
	Symbol Symbol `json:"type"`
	Value  *int   `json:"value,omitempty"`
}

func (s Symbol) MarshalText() ([]byte, error) {
	if s < Value || s > Wild {
		return nil, fmt.Errorf("invalid card type %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Symbol) UnmarshalText(text []byte) error {
	parsed, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalJSON encodes a card as {"color":"RED","type":"VALUE","value":3}
func (c Card) MarshalJSON() ([]byte, error) {
	out := cardJSON{Color: c.Color, Symbol: c.Symbol}
	if c.Symbol == Value {
		n := c.Number
		out.Value = &n
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a card, requiring a value in 0-9 for Value cards
func (c *Card) UnmarshalJSON(data []byte) error {
	var in cardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	card := Card{Color: in.Color, Symbol: in.Symbol}
	if in.Symbol == Value {
		if in.Value == nil || *in.Value < 0 || *in.Value > 9 {
			return errors.New("value card requires a value between 0 and 9")
		}
		card.Number = *in.Value
	}
	*c = card
	return nil
}

// ParseCard parses the short notation produced by Card.String
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	var color Color
	switch strings.ToLower(s[:1]) {
	case "r":
		color = Red
	case "y":
		color = Yellow
	case "g":
		color = Green
	case "b":
		color = Blue
	case "k":
		color = Black
	default:
		return Card{}, fmt.Errorf("invalid color in card %q", s)
	}

	switch rest := strings.ToUpper(s[1:]); rest {
	case "S":
		return NewCard(color, Skip), nil
	case "R":
		return NewCard(color, Reverse), nil
	case "+2":
		return NewCard(color, Draw2), nil
	case "+4":
		return NewCard(color, Draw4), nil
	case "W":
		return NewCard(color, Wild), nil
	default:
		if len(rest) == 1 && rest[0] >= '0' && rest[0] <= '9' {
			return NewValueCard(color, int(rest[0]-'0')), nil
		}
		return Card{}, fmt.Errorf("invalid symbol in card %q", s)
	}
}

// ParseCards parses a whitespace separated list of cards (e.g., "r7 gS k+4")
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, field := range fields {
		card, err := ParseCard(field)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}
