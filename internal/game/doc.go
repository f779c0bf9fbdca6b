// Package game implements the rules of an UNO-style card game.
//
// The main type is Game, a synchronous state machine that validates every
// action a player submits against the current state before applying it.
// Validation always happens before mutation, so a returned error means the
// game was left untouched.
//
// # Basic Usage
//
//	g := game.New("alice")
//	g.AddPlayer("bob")
//	if err := g.Start(); err != nil {
//	    // deck could not supply the starting hands
//	}
//	current, _ := g.CurrentPlayer()
//	for _, card := range current.Cards() {
//	    if g.CanPlayCard(card) {
//	        _ = g.PlayCard(current.Name(), card, nil)
//	        break
//	    }
//	}
//
// # Notifications
//
// Game never talks to the network. Every state change queues Event values
// which the caller collects with DrainEvents and delivers. Status events are
// personalized and addressed to a single player; the others are meant for
// every seated player.
//
// # Concurrency
//
// Game is not safe for concurrent use. Callers must serialize access to each
// game; independent games can be used in parallel.
//
// # Deterministic Testing
//
// Inject a seeded generator to make seating, the starting player and
// shuffling reproducible:
//
//	rng := rand.New(rand.NewPCG(1, 2))
//	g := game.New("alice", game.WithRand(rng))
package game
