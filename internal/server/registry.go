package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/unoserver/internal/game"
)

var (
	// ErrGameNotFound is returned for an unknown game ID
	ErrGameNotFound = errors.New("game not found")

	// ErrGameBusy is returned when another request held the game for longer
	// than the lock timeout
	ErrGameBusy = errors.New("game is busy, try again")
)

// registryEntry guards a single game. The one-slot channel is the game's
// lock; unlike a mutex it can be acquired with a timeout.
type registryEntry struct {
	game *game.Game
	lock chan struct{}
}

// Registry maps game IDs to games and lets at most one request work on a
// game at a time. Different games are independent.
type Registry struct {
	mu          sync.RWMutex
	games       map[string]*registryEntry
	clock       quartz.Clock
	lockTimeout time.Duration
}

// NewRegistry creates an empty registry
func NewRegistry(clock quartz.Clock, lockTimeout time.Duration) *Registry {
	return &Registry{
		games:       make(map[string]*registryEntry),
		clock:       clock,
		lockTimeout: lockTimeout,
	}
}

// Add registers a new game
func (r *Registry) Add(g *game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[g.ID()]; exists {
		return fmt.Errorf("game %s already exists", g.ID())
	}
	r.games[g.ID()] = &registryEntry{game: g, lock: make(chan struct{}, 1)}
	return nil
}

// Remove forgets a game. Requests already holding it finish normally.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
}

// Len returns the number of registered games
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// IDs returns the registered game IDs in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// With runs fn with exclusive access to the game. It waits at most the lock
// timeout for a busy game and then fails with ErrGameBusy rather than
// queueing.
func (r *Registry) With(ctx context.Context, id string, fn func(*game.Game) error) error {
	r.mu.RLock()
	entry, ok := r.games[id]
	r.mu.RUnlock()
	if !ok {
		return ErrGameNotFound
	}

	if err := r.acquire(ctx, entry); err != nil {
		return err
	}
	defer func() { <-entry.lock }()

	return fn(entry.game)
}

func (r *Registry) acquire(ctx context.Context, entry *registryEntry) error {
	select {
	case entry.lock <- struct{}{}:
		return nil
	default:
	}

	timer := r.clock.NewTimer(r.lockTimeout, "registry", "acquire")
	defer timer.Stop()

	select {
	case entry.lock <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrGameBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}
