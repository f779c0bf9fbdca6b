package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/unoserver/internal/auth"
	"github.com/lox/unoserver/internal/bot"
	"github.com/lox/unoserver/internal/deck"
	"github.com/lox/unoserver/internal/game"
	"github.com/lox/unoserver/internal/randutil"
)

// Errors for rules the engine leaves to its caller
var (
	ErrNameRequired   = errors.New("player name cannot be empty")
	ErrNameTaken      = errors.New("player name is already taken in this game")
	ErrGameNotInLobby = errors.New("game has already left the lobby")
	ErrGameFull       = errors.New("game is full")
	ErrNotAuthor      = errors.New("only the author of the game can do this")
	ErrWrongGame      = errors.New("token was issued for another game")
)

// maxBotMoves bounds the bot turns taken after a single request. Every move
// either plays or draws, so a game of bots only ends well within it.
const maxBotMoves = 10000

// Notifier delivers engine events to the players of a game
type Notifier interface {
	Deliver(gameID string, events []game.Event)
}

// JoinResult is returned to a player entering a game
type JoinResult struct {
	GameID string
	Server string
	Token  string
}

// DrawResult describes a completed draw
type DrawResult struct {
	Cards []deck.Card
	Next  string
}

// GameService maps authenticated requests onto games. It enforces the rules
// the engine leaves to its caller (lobby-only joins, unique names, author
// privileges), takes the turns of bots and hands engine events to the
// notifier.
type GameService struct {
	registry      *Registry
	authority     *auth.Authority
	notifier      Notifier
	rng           *randutil.Source
	settings      GameSettings
	publicAddress string
	logger        *log.Logger

	mu   sync.Mutex
	bots map[string]map[string]bot.Strategy // gameID -> bot name -> strategy
}

// NewGameService creates a new game service
func NewGameService(registry *Registry, authority *auth.Authority, notifier Notifier, rng *randutil.Source, settings GameSettings, publicAddress string, logger *log.Logger) *GameService {
	return &GameService{
		registry:      registry,
		authority:     authority,
		notifier:      notifier,
		rng:           rng,
		settings:      settings,
		publicAddress: publicAddress,
		logger:        logger.WithPrefix("game"),
		bots:          make(map[string]map[string]bot.Strategy),
	}
}

// CreateGame creates a game in the lobby with name as its author
func (gs *GameService) CreateGame(ctx context.Context, name string) (JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return JoinResult{}, ErrNameRequired
	}

	g := game.New(name, game.WithRand(gs.rng.Next()))
	if err := gs.registry.Add(g); err != nil {
		return JoinResult{}, err
	}

	gs.logger.Info("Created game", "game", g.ID(), "author", name)
	return gs.admit(g.ID(), name)
}

// JoinGame seats a new player in a game that is still in the lobby
func (gs *GameService) JoinGame(ctx context.Context, gameID, name string) (JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return JoinResult{}, ErrNameRequired
	}

	err := gs.registry.With(ctx, gameID, func(g *game.Game) error {
		if err := gs.canSeat(g, name); err != nil {
			return err
		}
		g.AddPlayer(name)
		gs.notifier.Deliver(gameID, lobbyStatus(g))
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}

	gs.logger.Info("Player joined", "game", gameID, "player", name)
	return gs.admit(gameID, name)
}

func (gs *GameService) canSeat(g *game.Game, name string) error {
	if g.Status() != game.Lobby {
		return ErrGameNotInLobby
	}
	if _, taken := g.FindPlayer(name); taken {
		return ErrNameTaken
	}
	if len(g.Players()) >= gs.settings.MaxPlayers {
		return ErrGameFull
	}
	return nil
}

func (gs *GameService) admit(gameID, name string) (JoinResult, error) {
	token, err := gs.authority.Issue(name, gameID)
	if err != nil {
		return JoinResult{}, fmt.Errorf("issue token: %w", err)
	}
	return JoinResult{GameID: gameID, Server: gs.publicAddress, Token: token}, nil
}

// AddBot seats a computer-controlled player. Only the author may add bots.
func (gs *GameService) AddBot(ctx context.Context, identity *auth.Identity, gameID string) (string, error) {
	var name string
	err := gs.withGame(ctx, identity, gameID, func(g *game.Game) error {
		if err := requireAuthor(g, identity); err != nil {
			return err
		}

		name = fmt.Sprintf("%s-%s", gs.settings.BotPrefix, uuid.NewString()[:8])
		if err := gs.canSeat(g, name); err != nil {
			return err
		}

		strategy, err := bot.New(gs.settings.BotStrategy, gs.rng.Next(), gs.logger)
		if err != nil {
			return err
		}

		g.AddPlayer(name)
		gs.setBot(gameID, name, strategy)
		gs.notifier.Deliver(gameID, lobbyStatus(g))
		return nil
	})
	if err != nil {
		return "", err
	}

	gs.logger.Info("Added bot", "game", gameID, "bot", name, "strategy", gs.settings.BotStrategy)
	return name, nil
}

// StartGame deals a new game. Only the author may start it.
func (gs *GameService) StartGame(ctx context.Context, identity *auth.Identity, gameID string) error {
	return gs.withGame(ctx, identity, gameID, func(g *game.Game) error {
		if err := requireAuthor(g, identity); err != nil {
			return err
		}
		if err := g.Start(); err != nil {
			return err
		}

		gs.logger.Info("Started game", "game", gameID, "players", len(g.Players()))
		return gs.afterMove(g)
	})
}

// PlayCard plays a card for the authenticated player
func (gs *GameService) PlayCard(ctx context.Context, identity *auth.Identity, gameID string, card deck.Card, newColor *deck.Color) error {
	return gs.withGame(ctx, identity, gameID, func(g *game.Game) error {
		if err := g.PlayCard(identity.Player, card, newColor); err != nil {
			return err
		}
		return gs.afterMove(g)
	})
}

// DrawCards draws for the authenticated player
func (gs *GameService) DrawCards(ctx context.Context, identity *auth.Identity, gameID string) (DrawResult, error) {
	var result DrawResult
	err := gs.withGame(ctx, identity, gameID, func(g *game.Game) error {
		cards, err := g.DrawCards(identity.Player)
		if err != nil {
			return err
		}
		result = DrawResult{Cards: cards, Next: currentName(g)}
		return gs.afterMove(g)
	})
	return result, err
}

// AcceptSkip lets the authenticated player be skipped by an active skip chain
func (gs *GameService) AcceptSkip(ctx context.Context, identity *auth.Identity, gameID string) (string, error) {
	var next string
	err := gs.withGame(ctx, identity, gameID, func(g *game.Game) error {
		if err := g.AcceptSkip(identity.Player); err != nil {
			return err
		}
		next = currentName(g)
		return gs.afterMove(g)
	})
	return next, err
}

// Status returns the game as seen by the authenticated player
func (gs *GameService) Status(ctx context.Context, identity *auth.Identity, gameID string) (game.StatusSnapshot, error) {
	var snapshot game.StatusSnapshot
	err := gs.withGame(ctx, identity, gameID, func(g *game.Game) error {
		var err error
		snapshot, err = g.StatusFor(identity.Player)
		return err
	})
	return snapshot, err
}

func (gs *GameService) withGame(ctx context.Context, identity *auth.Identity, gameID string, fn func(*game.Game) error) error {
	if identity == nil || identity.GameID != gameID {
		return ErrWrongGame
	}
	return gs.registry.With(ctx, gameID, fn)
}

func requireAuthor(g *game.Game, identity *auth.Identity) error {
	author, ok := g.FindAuthor()
	if !ok {
		return fmt.Errorf("%w: game has no author", game.ErrInvariantViolation)
	}
	if author.Name() != identity.Player {
		return ErrNotAuthor
	}
	return nil
}

// afterMove lets bots take their turns and delivers everything that
// happened. It runs while the game is locked, so events reach clients in
// the order they were produced.
func (gs *GameService) afterMove(g *game.Game) error {
	err := gs.playBots(g)

	events := g.DrainEvents()
	if gs.logger.GetLevel() <= log.DebugLevel {
		formatter := game.NewEventFormatter(game.FormattingOptions{})
		for _, event := range events {
			if event.Recipient() == "" {
				gs.logger.Debug(formatter.Format(event), "game", g.ID())
			}
		}
	}
	gs.notifier.Deliver(g.ID(), events)

	if g.Status() == game.Finished {
		gs.logger.Info("Game finished", "game", g.ID(), "winner", winnerName(g))
	}
	return err
}

func (gs *GameService) playBots(g *game.Game) error {
	for moves := 0; moves < maxBotMoves && g.Status() == game.Running; moves++ {
		current, ok := g.CurrentPlayer()
		if !ok {
			return game.ErrNoOneIsPlaying
		}

		strategy, isBot := gs.getBot(g.ID(), current.Name())
		if !isBot {
			return nil
		}

		situation, err := bot.NewSituation(g, current.Name())
		if err != nil {
			return err
		}

		move := strategy.ChooseMove(situation)
		if err := bot.Apply(g, current.Name(), move); err != nil {
			gs.logger.Error("Bot made an illegal move", "game", g.ID(), "bot", current.Name(), "move", move.Kind, "card", move.Card, "error", err)
			return fmt.Errorf("%w: bot %s: %v", game.ErrInvariantViolation, current.Name(), err)
		}
	}
	return nil
}

func (gs *GameService) setBot(gameID, name string, strategy bot.Strategy) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.bots[gameID] == nil {
		gs.bots[gameID] = make(map[string]bot.Strategy)
	}
	gs.bots[gameID][name] = strategy
}

func (gs *GameService) getBot(gameID, name string) (bot.Strategy, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	strategy, ok := gs.bots[gameID][name]
	return strategy, ok
}

// lobbyStatus builds one status event per seated player. The engine only
// emits status on start and finish; the lobby is the service's concern.
func lobbyStatus(g *game.Game) []game.Event {
	events := make([]game.Event, 0, len(g.Players()))
	for _, p := range g.Players() {
		snapshot, err := g.StatusFor(p.Name())
		if err != nil {
			continue
		}
		events = append(events, game.NewStatusEvent(snapshot))
	}
	return events
}

func currentName(g *game.Game) string {
	if current, ok := g.CurrentPlayer(); ok {
		return current.Name()
	}
	return ""
}

func winnerName(g *game.Game) string {
	if finished := g.FinishedPlayers(); len(finished) > 0 {
		return finished[0].Name()
	}
	return ""
}
