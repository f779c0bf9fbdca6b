package game

import (
	"fmt"
	rand "math/rand/v2"
	"sort"
	"strings"

	"github.com/lox/unoserver/internal/deck"
	"github.com/lox/unoserver/internal/gameid"
)

// CardsDealtToPlayers is the starting hand size
const CardsDealtToPlayers = 7

// Status is the lifecycle stage of a game
type Status int

const (
	Lobby Status = iota
	Running
	Finished
)

// String returns the wire name of a status
func (s Status) String() string {
	switch s {
	case Lobby:
		return "LOBBY"
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	default:
		return "?"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if s < Lobby || s > Finished {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "LOBBY":
		*s = Lobby
	case "RUNNING":
		*s = Running
	case "FINISHED":
		*s = Finished
	default:
		return fmt.Errorf("invalid status %q", string(text))
	}
	return nil
}

// Option configures a new Game
type Option func(*Game)

// WithRand injects the random source used for seating, the starting player
// and shuffling. A *rand.Rand is not safe for concurrent use; the game must
// own it.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) {
		g.rng = rng
	}
}

// WithID sets the game ID instead of generating one
func WithID(id string) Option {
	return func(g *Game) {
		g.id = id
	}
}

// Game is the state machine of a single UNO game. It is not safe for
// concurrent use; callers serialize access per game.
type Game struct {
	id            string
	status        Status
	players       []*Player
	deck          *deck.Deck
	currentPlayer int
	// activeCards must be answered by the current player, by stacking
	// the same symbol, drawing or accepting the skip.
	activeCards *ActiveCards
	isClockwise bool
	rng         *rand.Rand
	events      []Event
}

// New creates a game in the lobby with its author as the only player
func New(authorName string, opts ...Option) *Game {
	g := &Game{
		status:      Lobby,
		players:     []*Player{NewPlayer(authorName, true)},
		activeCards: NewActiveCards(),
		isClockwise: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.id == "" {
		g.id = gameid.Generate()
	}
	g.deck = deck.NewDeck(g.rng)
	return g
}

// ID returns the game identifier
func (g *Game) ID() string {
	return g.id
}

// Status returns the lifecycle stage
func (g *Game) Status() Status {
	return g.status
}

// IsClockwise reports the direction of play
func (g *Game) IsClockwise() bool {
	return g.isClockwise
}

// Deck returns the game's deck
func (g *Game) Deck() *deck.Deck {
	return g.deck
}

// ActiveCards returns the pending forced-response chain
func (g *Game) ActiveCards() *ActiveCards {
	return g.activeCards
}

// Players returns the players in seating order
func (g *Game) Players() []*Player {
	players := make([]*Player, len(g.players))
	copy(players, g.players)
	return players
}

// AddPlayer seats a new player. Only meaningful in the lobby; callers
// enforce that and name uniqueness.
func (g *Game) AddPlayer(name string) {
	g.players = append(g.players, NewPlayer(name, false))
}

// FindPlayer returns the player with the given name
func (g *Game) FindPlayer(name string) (*Player, bool) {
	for _, player := range g.players {
		if player.Name() == name {
			return player, true
		}
	}
	return nil, false
}

// FindAuthor returns the player who created the game
func (g *Game) FindAuthor() (*Player, bool) {
	for _, player := range g.players {
		if player.IsAuthor() {
			return player, true
		}
	}
	return nil, false
}

// CurrentPlayer returns the player whose turn it is
func (g *Game) CurrentPlayer() (*Player, bool) {
	if g.currentPlayer < 0 || g.currentPlayer >= len(g.players) {
		return nil, false
	}
	return g.players[g.currentPlayer], true
}

// FinishedPlayers returns the players who emptied their hand, first out first
func (g *Game) FinishedPlayers() []*Player {
	var finished []*Player
	for _, player := range g.players {
		if _, ok := player.Position(); ok {
			finished = append(finished, player)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		pi, _ := finished[i].Position()
		pj, _ := finished[j].Position()
		return pi < pj
	})
	return finished
}

func (g *Game) unfinishedCount() int {
	count := 0
	for _, player := range g.players {
		if !player.IsFinished() {
			count++
		}
	}
	return count
}

// DrainEvents returns the notifications produced since the last call
func (g *Game) DrainEvents() []Event {
	events := g.events
	g.events = nil
	return events
}

func (g *Game) emit(event Event) {
	g.events = append(g.events, event)
}

// Start shuffles the seating, picks a random starting player, deals a new
// deck and moves the game to Running. A finished game can be started again.
func (g *Game) Start() error {
	if g.status == Running {
		return ErrGameAlreadyStarted
	}

	g.randomizePlayerOrder()
	g.randomizeStartingPlayer()
	g.clearPlayerPositions()
	g.activeCards.Clear()
	g.isClockwise = true

	g.status = Running
	if err := g.dealStartingCards(); err != nil {
		return err
	}

	g.emitStatusToAll()
	return nil
}

func (g *Game) randomizePlayerOrder() {
	g.rng.Shuffle(len(g.players), func(i, j int) {
		g.players[i], g.players[j] = g.players[j], g.players[i]
	})
}

// randomizeStartingPlayer imitates a random starting player by pretending
// some rounds have already been played.
func (g *Game) randomizeStartingPlayer() {
	g.currentPlayer = g.rng.IntN(len(g.players))
}

func (g *Game) clearPlayerPositions() {
	for _, player := range g.players {
		player.ClearPosition()
	}
}

func (g *Game) dealStartingCards() error {
	g.deck = deck.NewDeck(g.rng)

	for _, player := range g.players {
		player.DropAllCards()

		for i := 0; i < CardsDealtToPlayers; i++ {
			card, ok := g.deck.Draw()
			if !ok {
				return ErrDeckEmptyWhenStartingGame
			}
			player.GiveCard(card)
		}
	}

	if _, ok := g.deck.FlipStartingCard(); !ok {
		return ErrDeckEmptyWhenStartingGame
	}
	return nil
}

// CanPlayCard reports whether card may be played now. During a chain only
// the chain's symbol may be played, color does not matter. Otherwise black
// cards are always playable, anything else must match the top card's color
// or symbol.
func (g *Game) CanPlayCard(card deck.Card) bool {
	if symbol, ok := g.activeCards.ActiveSymbol(); ok {
		return card.Symbol == symbol
	}

	top, ok := g.deck.PeekTop()
	if !ok {
		return false
	}

	return card.IsBlack() ||
		card.Color == top.Color ||
		sameSymbol(card, top)
}

func sameSymbol(a, b deck.Card) bool {
	if a.Symbol != b.Symbol {
		return false
	}
	return a.Symbol != deck.Value || a.Number == b.Number
}

func (g *Game) hasPlayableCard(player *Player) bool {
	for _, card := range player.hand {
		if g.CanPlayCard(card) {
			return true
		}
	}
	return false
}

// playerAtTurn returns the named player if the game is running and it is
// their turn.
func (g *Game) playerAtTurn(name string) (*Player, error) {
	if g.status != Running {
		return nil, ErrGameNotRunning
	}

	player, ok := g.FindPlayer(name)
	if !ok {
		return nil, &NoSuchPlayerError{Player: name}
	}

	current, ok := g.CurrentPlayer()
	if !ok {
		return nil, ErrNoOneIsPlaying
	}
	if current.Name() != player.Name() {
		return nil, &PlayerOutOfTurnError{Player: name}
	}

	return player, nil
}

func (g *Game) canPlayerPlay(name string, card deck.Card, newColor *deck.Color) (*Player, error) {
	player, err := g.playerAtTurn(name)
	if err != nil {
		return nil, err
	}

	if !g.CanPlayCard(card) {
		return nil, &CardCannotBePlayedError{Card: card, Top: g.deck.TopDiscardCard()}
	}

	if newColor != nil && (*newColor < deck.Red || *newColor >= deck.Black) {
		return nil, &InvalidColorError{Color: *newColor}
	}

	if !player.HasCard(card) {
		return nil, &NoSuchCardError{Player: name, Card: card}
	}

	return player, nil
}

// PlayCard plays card from the named player's hand. newColor recolors a
// wild-family card; a wild played without a color stays black. Nothing is
// changed when an error is returned.
func (g *Game) PlayCard(name string, card deck.Card, newColor *deck.Color) error {
	player, err := g.canPlayerPlay(name, card, newColor)
	if err != nil {
		return err
	}

	position := len(g.FinishedPlayers())
	played, err := player.PlayCardByEq(card)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}
	if played.ShouldBeBlack() && newColor != nil {
		if played, err = played.MorphBlackCard(*newColor); err != nil {
			return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
		}
	}

	finished := player.IsFinished()
	if finished {
		if err := player.SetPosition(position); err != nil {
			return err
		}
	}

	repeatTurn, err := g.handlePlayedCard(player, played)
	if err != nil {
		return err
	}
	g.deck.Play(played)
	if !repeatTurn {
		g.endTurn()
	}

	g.playCardEvents(player, played, finished, position)
	return nil
}

// handlePlayedCard applies the card's effect. It reports whether the player
// keeps the turn, which happens when a reverse is played with only two
// players left.
func (g *Game) handlePlayedCard(player *Player, played deck.Card) (bool, error) {
	switch played.Symbol {
	case deck.Value, deck.Wild:
		g.activeCards.Clear()
	case deck.Reverse:
		g.reverse()
		g.activeCards.Clear()
		return !player.IsFinished() && g.unfinishedCount() == 2, nil
	case deck.Draw2, deck.Draw4, deck.Skip:
		if err := g.activeCards.Push(played); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (g *Game) reverse() {
	g.isClockwise = !g.isClockwise
}

func (g *Game) playCardEvents(player *Player, played deck.Card, finished bool, position int) {
	g.emit(NewPlayCardEvent(player.Name(), g.currentPlayerName(), played))

	if finished {
		g.emit(NewFinishEvent(player.Name(), position))
	}

	// the last player left cannot be outplaced
	if g.unfinishedCount() <= 1 {
		g.status = Finished
		g.emitStatusToAll()
	}
}

func (g *Game) currentPlayerName() string {
	if current, ok := g.CurrentPlayer(); ok {
		return current.Name()
	}
	return ""
}

func (g *Game) nextTurn() {
	n := len(g.players)
	if g.isClockwise {
		g.currentPlayer = (g.currentPlayer + 1) % n
	} else {
		g.currentPlayer = (g.currentPlayer - 1 + n) % n
	}
}

// endTurn moves the turn to the next unfinished player. Returns false when
// every player is finished and there is nobody to move to.
func (g *Game) endTurn() bool {
	if g.unfinishedCount() == 0 {
		return false
	}

	for {
		g.nextTurn()
		if !g.players[g.currentPlayer].IsFinished() {
			return true
		}
	}
}

func (g *Game) canPlayerDraw(name string) (*Player, error) {
	player, err := g.playerAtTurn(name)
	if err != nil {
		return nil, err
	}

	if g.hasPlayableCard(player) {
		return nil, ErrPlayerCanPlayInstead
	}

	if symbol, ok := g.activeCards.ActiveSymbol(); ok && symbol == deck.Skip {
		return nil, &PlayerMustPlayInsteadError{Top: g.deck.TopDiscardCard()}
	}

	return player, nil
}

// DrawCards draws for a player who has nothing to play: the sum of an active
// draw chain, or a single card. Fewer cards are returned if the deck runs
// dry.
func (g *Game) DrawCards(name string) ([]deck.Card, error) {
	player, err := g.canPlayerDraw(name)
	if err != nil {
		return nil, err
	}

	count := 1
	if g.activeCards.AreCardsActive() {
		sum, ok := g.activeCards.SumActiveDrawCards()
		if !ok {
			return nil, fmt.Errorf("%w: player can draw but the active cards are not draw cards", ErrInvariantViolation)
		}
		count = sum
		g.activeCards.Clear()
	}

	drawn := g.drawNCards(player, count)

	g.endTurn()
	g.emit(NewDrawEvent(name, g.currentPlayerName(), len(drawn)))

	return drawn, nil
}

func (g *Game) drawNCards(player *Player, n int) []deck.Card {
	drawn := make([]deck.Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := g.deck.Draw()
		if !ok {
			// no cards left on the table at all
			break
		}
		drawn = append(drawn, card)
		player.GiveCard(card)
	}
	return drawn
}

// AcceptSkip lets a player without a skip card be skipped by an active skip
// chain. The whole chain is resolved by one accept.
func (g *Game) AcceptSkip(name string) error {
	player, err := g.playerAtTurn(name)
	if err != nil {
		return err
	}

	if symbol, ok := g.activeCards.ActiveSymbol(); !ok || symbol != deck.Skip {
		return ErrNoSkipToAccept
	}

	if g.hasPlayableCard(player) {
		return ErrPlayerCanPlayInstead
	}

	g.activeCards.Clear()
	g.endTurn()
	g.emit(NewSkipEvent(name, g.currentPlayerName()))
	return nil
}

// StatusFor builds the snapshot seen by recipient, including their own hand
func (g *Game) StatusFor(recipient string) (StatusSnapshot, error) {
	player, ok := g.FindPlayer(recipient)
	if !ok {
		return StatusSnapshot{}, &NoSuchPlayerError{Player: recipient}
	}

	snapshot := StatusSnapshot{
		GameID:          g.id,
		Status:          g.status,
		You:             recipient,
		Players:         make([]PlayerSummary, 0, len(g.players)),
		FinishedPlayers: make([]string, 0),
		IsClockwise:     g.isClockwise,
		Cards:           player.Cards(),
	}

	if author, ok := g.FindAuthor(); ok {
		snapshot.Author = author.Name()
	}

	for _, p := range g.players {
		summary := PlayerSummary{
			Name:     p.Name(),
			Cards:    p.CardCount(),
			IsAuthor: p.IsAuthor(),
		}
		if position, ok := p.Position(); ok {
			summary.Position = &position
		}
		snapshot.Players = append(snapshot.Players, summary)
	}

	for _, p := range g.FinishedPlayers() {
		snapshot.FinishedPlayers = append(snapshot.FinishedPlayers, p.Name())
	}

	if g.status != Lobby {
		snapshot.CurrentPlayer = g.currentPlayerName()
	}

	if top, ok := g.deck.PeekTop(); ok {
		snapshot.DiscardedCard = &top
	}

	return snapshot, nil
}

// emitStatusToAll queues one personalized status event per seated player
func (g *Game) emitStatusToAll() {
	for _, player := range g.players {
		snapshot, err := g.StatusFor(player.Name())
		if err != nil {
			continue
		}
		g.emit(NewStatusEvent(snapshot))
	}
}
