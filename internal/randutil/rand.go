package randutil

import (
	rand "math/rand/v2"
	"sync"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Source hands out independent generators, one per game. A *rand.Rand is not
// safe for concurrent use, so each game gets its own.
type Source struct {
	mu   sync.Mutex
	root *rand.Rand
}

// NewSource returns a Source. A zero seed draws from the runtime's random
// state, any other seed makes the sequence of generators reproducible.
func NewSource(seed int64) *Source {
	if seed == 0 {
		return &Source{}
	}
	return &Source{root: New(seed)}
}

// Next returns a fresh generator
func (s *Source) Next() *rand.Rand {
	if s.root == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return New(s.root.Int64())
}

// IntN returns a random int in [0, n). Safe for concurrent use.
func (s *Source) IntN(n int) int {
	if s.root == nil {
		return rand.IntN(n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.IntN(n)
}
