// Package simulator plays games between bots to compare strategies.
package simulator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/unoserver/internal/bot"
	"github.com/lox/unoserver/internal/game"
	"github.com/lox/unoserver/internal/randutil"
	"github.com/lox/unoserver/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// maxTurns bounds a single game. Bots always play or draw, so a game ends
// well within it.
const maxTurns = 10000

// Config holds configuration for running simulations
type Config struct {
	Games      int
	Strategies []string // One per seat
	Seed       int64
	Workers    int
	Timeout    time.Duration
	Logger     *log.Logger
}

// Simulator runs bot games
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Lineup describes the seats, e.g. "smart,rand,rand"
func (s *Simulator) Lineup() string {
	return strings.Join(s.config.Strategies, ",")
}

// Run plays the configured number of games and returns their statistics.
// Game i is seeded with Seed+i, so a run is reproducible regardless of the
// number of workers.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if len(s.config.Strategies) < 2 {
		return nil, fmt.Errorf("need at least two seats, got %d", len(s.config.Strategies))
	}
	for _, name := range s.config.Strategies {
		if _, err := bot.New(name, randutil.New(0), s.config.Logger); err != nil {
			return nil, err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	seeds := make(chan int64)

	var mu sync.Mutex
	stats := &statistics.Statistics{}

	g.Go(func() error {
		defer close(seeds)
		for i := 0; i < s.config.Games; i++ {
			select {
			case seeds <- s.config.Seed + int64(i):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < s.config.Workers; w++ {
		g.Go(func() error {
			for seed := range seeds {
				result, err := s.playGameWithTimeout(ctx, seed)
				if err != nil {
					return err
				}

				mu.Lock()
				stats.Add(result)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playGameWithTimeout runs a single game with timeout protection
func (s *Simulator) playGameWithTimeout(ctx context.Context, seed int64) (statistics.GameResult, error) {
	if s.config.Timeout <= 0 {
		return s.PlayGame(seed)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	type outcome struct {
		result statistics.GameResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := s.PlayGame(seed)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return statistics.GameResult{}, fmt.Errorf("game timed out after %v (seed: %d): %w", s.config.Timeout, seed, ctx.Err())
	}
}

// PlayGame plays one game between the configured strategies
func (s *Simulator) PlayGame(seed int64) (statistics.GameResult, error) {
	rng := randutil.New(seed)

	strategies := make(map[string]string, len(s.config.Strategies))
	agents := make(map[string]bot.Strategy, len(s.config.Strategies))

	var g *game.Game
	for i, name := range s.config.Strategies {
		player := fmt.Sprintf("%s-%d", name, i+1)
		strategy, err := bot.New(name, rng, s.config.Logger)
		if err != nil {
			return statistics.GameResult{}, err
		}
		strategies[player] = name
		agents[player] = strategy

		if g == nil {
			g = game.New(player, game.WithRand(rng))
		} else {
			g.AddPlayer(player)
		}
	}

	if err := g.Start(); err != nil {
		return statistics.GameResult{}, err
	}

	turns := 0
	for ; turns < maxTurns && g.Status() == game.Running; turns++ {
		current, ok := g.CurrentPlayer()
		if !ok {
			return statistics.GameResult{}, game.ErrNoOneIsPlaying
		}

		situation, err := bot.NewSituation(g, current.Name())
		if err != nil {
			return statistics.GameResult{}, err
		}

		move := agents[current.Name()].ChooseMove(situation)
		if err := bot.Apply(g, current.Name(), move); err != nil {
			return statistics.GameResult{}, fmt.Errorf("seed %d turn %d: %s made an illegal move: %w", seed, turns, current.Name(), err)
		}
		g.DrainEvents()
	}

	if g.Status() != game.Finished {
		return statistics.GameResult{}, fmt.Errorf("seed %d: game did not finish within %d turns", seed, maxTurns)
	}

	players := g.Players()
	result := statistics.GameResult{Seed: seed, Turns: turns}
	for _, p := range players {
		rank := len(players)
		if position, ok := p.Position(); ok {
			rank = position + 1
		}
		result.Placings = append(result.Placings, statistics.Placing{
			Player:   p.Name(),
			Strategy: strategies[p.Name()],
			Rank:     rank,
		})
	}

	s.config.Logger.Debug("Game finished", "seed", seed, "turns", turns, "winner", g.FinishedPlayers()[0].Name())
	return result, nil
}
