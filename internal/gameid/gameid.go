// Package gameid generates the short identifiers players share to join a game.
package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Length is the number of characters in a game ID.
const Length = 10

// Crockford's base32 alphabet, lowercase, without i, l, o and u so IDs
// survive being read out loud.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator handles game ID generation with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator with optional RandSource
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new game ID using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new game ID using the generator's RandSource
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(Length)

	if g.randSource != nil {
		for i := 0; i < Length; i++ {
			b.WriteByte(alphabet[g.randSource.IntN(len(alphabet))])
		}
		return b.String()
	}

	var buf [Length]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	// 256 is a multiple of 32, so masking keeps the distribution uniform
	for _, v := range buf {
		b.WriteByte(alphabet[v&0x1f])
	}
	return b.String()
}

// Validate checks if a game ID is well formed
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
