package game

import (
	"errors"
	rand "math/rand/v2"
	"testing"

	"github.com/lox/unoserver/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seatNames = []string{"alice", "bob", "carol", "dave"}

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// riggedGame returns a running game with one player per hand in seating
// order, alice to play, top on the discard pile and drawPile to draw from
// (top card last).
func riggedGame(t *testing.T, top, drawPile string, hands ...string) *Game {
	t.Helper()

	g := New(seatNames[0], WithRand(testRNG()), WithID("testgame01"))
	for _, name := range seatNames[1:len(hands)] {
		g.AddPlayer(name)
	}

	for i, hand := range hands {
		for _, card := range deck.MustParseCards(hand) {
			g.players[i].GiveCard(card)
		}
	}

	g.deck = deck.NewDeckFromPiles(deck.MustParseCards(drawPile), deck.MustParseCards(top), testRNG())
	g.status = Running
	g.currentPlayer = 0
	return g
}

func card(t *testing.T, s string) deck.Card {
	t.Helper()
	c, err := deck.ParseCard(s)
	require.NoError(t, err)
	return c
}

func color(c deck.Color) *deck.Color {
	return &c
}

func requireCurrent(t *testing.T, g *Game, name string) {
	t.Helper()
	current, ok := g.CurrentPlayer()
	require.True(t, ok)
	require.Equal(t, name, current.Name())
}

func totalCards(g *Game) int {
	total := g.deck.Total()
	for _, p := range g.players {
		total += p.CardCount()
	}
	return total
}

func TestNewGameStartsInLobby(t *testing.T) {
	g := New("alice", WithRand(testRNG()))

	assert.Equal(t, Lobby, g.Status())
	assert.Len(t, g.ID(), 10)
	assert.True(t, g.IsClockwise())

	author, ok := g.FindAuthor()
	require.True(t, ok)
	assert.Equal(t, "alice", author.Name())
	assert.False(t, g.ActiveCards().AreCardsActive())

	g.AddPlayer("bob")
	bob, ok := g.FindPlayer("bob")
	require.True(t, ok)
	assert.False(t, bob.IsAuthor())

	_, ok = g.FindPlayer("nobody")
	assert.False(t, ok)
}

func TestStartDealsSevenCards(t *testing.T) {
	g := New("alice", WithRand(testRNG()))
	g.AddPlayer("bob")

	require.GreaterOrEqual(t, g.Deck().DrawPileSize(), CardsDealtToPlayers*2+1)
	require.NoError(t, g.Start())

	assert.Equal(t, Running, g.Status())
	for _, p := range g.Players() {
		assert.Equal(t, CardsDealtToPlayers, p.CardCount(), p.Name())
	}

	top := g.Deck().TopDiscardCard()
	assert.Equal(t, deck.Value, top.Symbol)
	assert.Equal(t, 1, g.Deck().DiscardPileSize())
	assert.Equal(t, deck.TotalCards, totalCards(g))
}

func TestStartEmitsStatusForEveryPlayer(t *testing.T) {
	g := New("alice", WithRand(testRNG()))
	g.AddPlayer("bob")
	g.AddPlayer("carol")
	require.NoError(t, g.Start())

	events := g.DrainEvents()
	require.Len(t, events, 3)

	recipients := make(map[string]bool)
	for _, event := range events {
		status, ok := event.(StatusEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeStatus, status.EventType())
		assert.Len(t, status.Snapshot.Cards, CardsDealtToPlayers)
		assert.Equal(t, Running, status.Snapshot.Status)
		recipients[status.Recipient()] = true
	}
	assert.Equal(t, map[string]bool{"alice": true, "bob": true, "carol": true}, recipients)
	assert.Empty(t, g.DrainEvents())
}

func TestStartTwiceFails(t *testing.T) {
	g := New("alice", WithRand(testRNG()))
	g.AddPlayer("bob")
	require.NoError(t, g.Start())

	assert.ErrorIs(t, g.Start(), ErrGameAlreadyStarted)
}

func TestStartRunsOutOfCards(t *testing.T) {
	g := New("alice", WithRand(testRNG()))
	for i := 0; i < 15; i++ {
		g.AddPlayer(string(rune('a' + i)))
	}

	// 16 players need 112 cards
	assert.ErrorIs(t, g.Start(), ErrDeckEmptyWhenStartingGame)
}

func TestCanPlayCard(t *testing.T) {
	tests := []struct {
		name string
		top  string
		card string
		want bool
	}{
		{"same color", "r5", "r7", true},
		{"same number", "b3", "r3", true},
		{"different number", "b5", "r3", false},
		{"same action symbol", "bS", "rS", true},
		{"different color and symbol", "bS", "rR", false},
		{"wild on anything", "g2", "kW", true},
		{"draw4 on anything", "g2", "k+4", true},
		{"morphed wild color", "rW", "r1", true},
		{"morphed wild other color", "rW", "g1", false},
		{"colored card on unresolved wild", "kW", "r1", false},
		{"wild on unresolved wild", "kW", "kW", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := riggedGame(t, tt.top, "", "", "")
			assert.Equal(t, tt.want, g.CanPlayCard(card(t, tt.card)))
		})
	}
}

func TestCanPlayCardDuringChain(t *testing.T) {
	g := riggedGame(t, "r5", "", "r+2 r1", "g+2 k+4 r7 kW")
	require.NoError(t, g.PlayCard("alice", card(t, "r+2"), nil))

	assert.True(t, g.CanPlayCard(card(t, "g+2")))
	assert.False(t, g.CanPlayCard(card(t, "k+4")))
	assert.False(t, g.CanPlayCard(card(t, "r7")))
	assert.False(t, g.CanPlayCard(card(t, "kW")))
}

func TestDrawTwoForcesNextPlayerToDraw(t *testing.T) {
	g := riggedGame(t, "r5", "b1 b2 b3", "r+2 r1", "g3")

	require.NoError(t, g.PlayCard("alice", card(t, "r+2"), nil))
	requireCurrent(t, g, "bob")

	sum, ok := g.ActiveCards().SumActiveDrawCards()
	require.True(t, ok)
	assert.Equal(t, 2, sum)

	drawn, err := g.DrawCards("bob")
	require.NoError(t, err)
	assert.Equal(t, deck.MustParseCards("b3 b2"), drawn)

	bob, _ := g.FindPlayer("bob")
	assert.Equal(t, 3, bob.CardCount())
	assert.False(t, g.ActiveCards().AreCardsActive())
	requireCurrent(t, g, "alice")
}

func TestDrawTwoStacks(t *testing.T) {
	g := riggedGame(t, "r5", "b1 b2 b3 b4 b5", "r+2 r1", "g+2 g3", "y4")

	require.NoError(t, g.PlayCard("alice", card(t, "r+2"), nil))
	require.NoError(t, g.PlayCard("bob", card(t, "g+2"), nil))

	sum, ok := g.ActiveCards().SumActiveDrawCards()
	require.True(t, ok)
	assert.Equal(t, 4, sum)
	assert.Equal(t, 2, g.ActiveCards().Len())

	requireCurrent(t, g, "carol")
	drawn, err := g.DrawCards("carol")
	require.NoError(t, err)
	assert.Len(t, drawn, 4)
	assert.False(t, g.ActiveCards().AreCardsActive())
}

func TestPlayCardNotInHand(t *testing.T) {
	g := riggedGame(t, "r5", "", "r1 g2", "b3")

	err := g.PlayCard("alice", card(t, "r9"), nil)

	var noSuchCard *NoSuchCardError
	require.ErrorAs(t, err, &noSuchCard)
	assert.Equal(t, card(t, "r9"), noSuchCard.Card)

	alice, _ := g.FindPlayer("alice")
	assert.Equal(t, deck.MustParseCards("r1 g2"), alice.Cards())
	assert.Equal(t, card(t, "r5"), g.Deck().TopDiscardCard())
	requireCurrent(t, g, "alice")
	assert.Empty(t, g.DrainEvents())
}

func TestReverseWithTwoPlayersRepeatsTurn(t *testing.T) {
	g := riggedGame(t, "r5", "", "rR r1", "b3")

	require.NoError(t, g.PlayCard("alice", card(t, "rR"), nil))

	assert.False(t, g.IsClockwise())
	requireCurrent(t, g, "alice")
	assert.Equal(t, Running, g.Status())

	events := g.DrainEvents()
	require.Len(t, events, 1)
	play := events[0].(PlayCardEvent)
	assert.Equal(t, "alice", play.Player)
	assert.Equal(t, "alice", play.Next)
}

func TestReverseWithThreePlayersChangesDirection(t *testing.T) {
	g := riggedGame(t, "r5", "", "rR r1", "r2", "r3")

	require.NoError(t, g.PlayCard("alice", card(t, "rR"), nil))

	assert.False(t, g.IsClockwise())
	requireCurrent(t, g, "carol")

	require.NoError(t, g.PlayCard("carol", card(t, "r3"), nil))
	requireCurrent(t, g, "bob")
}

func TestLastCardFinishesPlayer(t *testing.T) {
	g := riggedGame(t, "r5", "", "r1", "g2 g3")

	require.NoError(t, g.PlayCard("alice", card(t, "r1"), nil))

	alice, _ := g.FindPlayer("alice")
	assert.True(t, alice.IsFinished())
	position, ok := alice.Position()
	require.True(t, ok)
	assert.Equal(t, 0, position)
	assert.Equal(t, Finished, g.Status())

	events := g.DrainEvents()
	require.Len(t, events, 4)
	assert.Equal(t, EventTypePlayCard, events[0].EventType())
	finish := events[1].(FinishEvent)
	assert.Equal(t, "alice", finish.Player)
	assert.Equal(t, 0, finish.Position)

	for _, event := range events[2:] {
		status := event.(StatusEvent)
		assert.Equal(t, Finished, status.Snapshot.Status)
		assert.Equal(t, []string{"alice"}, status.Snapshot.FinishedPlayers)
	}
}

func TestFinishedPlayersAreSkipped(t *testing.T) {
	g := riggedGame(t, "r5", "", "r1", "r2 r3", "r4 r6")

	require.NoError(t, g.PlayCard("alice", card(t, "r1"), nil))
	assert.Equal(t, Running, g.Status())
	requireCurrent(t, g, "bob")

	require.NoError(t, g.PlayCard("bob", card(t, "r2"), nil))
	require.NoError(t, g.PlayCard("carol", card(t, "r4"), nil))
	// alice is finished so the turn goes back to bob
	requireCurrent(t, g, "bob")

	require.NoError(t, g.PlayCard("bob", card(t, "r3"), nil))
	assert.Equal(t, Finished, g.Status())

	finished := g.FinishedPlayers()
	require.Len(t, finished, 2)
	assert.Equal(t, "alice", finished[0].Name())
	assert.Equal(t, "bob", finished[1].Name())
	position, _ := finished[1].Position()
	assert.Equal(t, 1, position)
}

func TestWildWithColorIsMorphed(t *testing.T) {
	g := riggedGame(t, "r5", "", "kW r1", "b3")

	require.NoError(t, g.PlayCard("alice", card(t, "kW"), color(deck.Green)))

	assert.Equal(t, card(t, "gW"), g.Deck().TopDiscardCard())
	assert.True(t, g.CanPlayCard(card(t, "g9")))
	assert.False(t, g.CanPlayCard(card(t, "r1")))
}

func TestWildWithoutColorStaysBlack(t *testing.T) {
	g := riggedGame(t, "r5", "", "kW r1", "b3 k+4")

	require.NoError(t, g.PlayCard("alice", card(t, "kW"), nil))

	top := g.Deck().TopDiscardCard()
	assert.Equal(t, deck.Black, top.Color)
	assert.False(t, g.CanPlayCard(card(t, "b3")))
	assert.True(t, g.CanPlayCard(card(t, "k+4")))
}

func TestBlackIsNotAValidNewColor(t *testing.T) {
	g := riggedGame(t, "r5", "", "kW r1", "b3")

	err := g.PlayCard("alice", card(t, "kW"), color(deck.Black))

	var invalidColor *InvalidColorError
	require.ErrorAs(t, err, &invalidColor)
	alice, _ := g.FindPlayer("alice")
	assert.Equal(t, 2, alice.CardCount())
}

func TestPlayCardValidation(t *testing.T) {
	g := riggedGame(t, "r5", "", "r1 g2", "r3")

	var outOfTurn *PlayerOutOfTurnError
	assert.ErrorAs(t, g.PlayCard("bob", card(t, "r3"), nil), &outOfTurn)

	var noSuchPlayer *NoSuchPlayerError
	assert.ErrorAs(t, g.PlayCard("mallory", card(t, "r3"), nil), &noSuchPlayer)

	var cannotPlay *CardCannotBePlayedError
	require.ErrorAs(t, g.PlayCard("alice", card(t, "g2"), nil), &cannotPlay)
	assert.Equal(t, card(t, "r5"), cannotPlay.Top)

	lobby := New("alice", WithRand(testRNG()))
	assert.ErrorIs(t, lobby.PlayCard("alice", card(t, "r1"), nil), ErrGameNotRunning)
	_, err := lobby.DrawCards("alice")
	assert.ErrorIs(t, err, ErrGameNotRunning)
	assert.ErrorIs(t, lobby.AcceptSkip("alice"), ErrGameNotRunning)
}

func TestDrawWhenPlayableCardHeld(t *testing.T) {
	g := riggedGame(t, "r5", "b1", "g5", "r3")

	_, err := g.DrawCards("alice")
	assert.ErrorIs(t, err, ErrPlayerCanPlayInstead)
	requireCurrent(t, g, "alice")
}

func TestDrawSingleCard(t *testing.T) {
	g := riggedGame(t, "r5", "b1 b2", "g2", "r3")

	drawn, err := g.DrawCards("alice")
	require.NoError(t, err)
	assert.Equal(t, deck.MustParseCards("b2"), drawn)
	requireCurrent(t, g, "bob")

	events := g.DrainEvents()
	require.Len(t, events, 1)
	draw := events[0].(DrawEvent)
	assert.Equal(t, "alice", draw.Player)
	assert.Equal(t, "bob", draw.Next)
	assert.Equal(t, 1, draw.Count)
}

func TestDrawFromExhaustedDeck(t *testing.T) {
	g := riggedGame(t, "r5", "", "g2", "r3")

	drawn, err := g.DrawCards("alice")
	require.NoError(t, err)
	assert.Empty(t, drawn)
	requireCurrent(t, g, "bob")
}

func TestDrawRecyclesDiscardPile(t *testing.T) {
	g := riggedGame(t, "bW r5", "", "r1 g2", "g3")

	require.NoError(t, g.PlayCard("alice", card(t, "r1"), nil))
	drawn, err := g.DrawCards("bob")
	require.NoError(t, err)
	require.Len(t, drawn, 1)

	// the morphed wild is black again once recycled
	assert.Contains(t, []deck.Card{card(t, "kW"), card(t, "r5")}, drawn[0])
	assert.Equal(t, card(t, "r1"), g.Deck().TopDiscardCard())
	assert.Equal(t, 1, g.Deck().DiscardPileSize())
}

func TestSkipChainMustBeAccepted(t *testing.T) {
	g := riggedGame(t, "r5", "b1", "rS r1", "g3", "y4")

	require.NoError(t, g.PlayCard("alice", card(t, "rS"), nil))
	requireCurrent(t, g, "bob")

	_, err := g.DrawCards("bob")
	var mustPlay *PlayerMustPlayInsteadError
	require.ErrorAs(t, err, &mustPlay)
	assert.Equal(t, card(t, "rS"), mustPlay.Top)

	g.DrainEvents()
	require.NoError(t, g.AcceptSkip("bob"))
	assert.False(t, g.ActiveCards().AreCardsActive())
	requireCurrent(t, g, "carol")

	events := g.DrainEvents()
	require.Len(t, events, 1)
	skip := events[0].(SkipEvent)
	assert.Equal(t, "bob", skip.Player)
	assert.Equal(t, "carol", skip.Next)
}

func TestAcceptSkipWhileHoldingSkip(t *testing.T) {
	g := riggedGame(t, "r5", "", "rS r1", "gS", "y4")

	require.NoError(t, g.PlayCard("alice", card(t, "rS"), nil))

	assert.ErrorIs(t, g.AcceptSkip("bob"), ErrPlayerCanPlayInstead)
	require.NoError(t, g.PlayCard("bob", card(t, "gS"), nil))
	assert.Equal(t, 2, g.ActiveCards().Len())

	require.NoError(t, g.AcceptSkip("carol"))
	requireCurrent(t, g, "alice")
}

func TestAcceptSkipWithoutSkipChain(t *testing.T) {
	g := riggedGame(t, "r5", "", "r+2 r1", "g3")
	assert.ErrorIs(t, g.AcceptSkip("alice"), ErrNoSkipToAccept)

	require.NoError(t, g.PlayCard("alice", card(t, "r+2"), nil))
	assert.ErrorIs(t, g.AcceptSkip("bob"), ErrNoSkipToAccept)
}

func TestStatusForRecipient(t *testing.T) {
	g := riggedGame(t, "r5", "", "r1 g2", "b3")

	snapshot, err := g.StatusFor("bob")
	require.NoError(t, err)
	assert.Equal(t, "testgame01", snapshot.GameID)
	assert.Equal(t, "bob", snapshot.You)
	assert.Equal(t, "alice", snapshot.Author)
	assert.Equal(t, "alice", snapshot.CurrentPlayer)
	assert.Equal(t, deck.MustParseCards("b3"), snapshot.Cards)
	require.NotNil(t, snapshot.DiscardedCard)
	assert.Equal(t, card(t, "r5"), *snapshot.DiscardedCard)
	require.Len(t, snapshot.Players, 2)
	assert.Equal(t, 2, snapshot.Players[0].Cards)
	assert.Empty(t, snapshot.FinishedPlayers)

	_, err = g.StatusFor("mallory")
	var noSuchPlayer *NoSuchPlayerError
	assert.ErrorAs(t, err, &noSuchPlayer)
}

func TestFinishedGameCanBeRestarted(t *testing.T) {
	g := riggedGame(t, "r5", "", "r1", "g2")
	require.NoError(t, g.PlayCard("alice", card(t, "r1"), nil))
	require.Equal(t, Finished, g.Status())

	require.NoError(t, g.Start())
	assert.Equal(t, Running, g.Status())
	assert.Empty(t, g.FinishedPlayers())
	for _, p := range g.Players() {
		assert.Equal(t, CardsDealtToPlayers, p.CardCount())
	}
}

func TestStatusText(t *testing.T) {
	for _, status := range []Status{Lobby, Running, Finished} {
		text, err := status.MarshalText()
		require.NoError(t, err)

		var decoded Status
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, status, decoded)
	}

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("PAUSED")))
}

// Plays seeded games with random legal moves and checks the invariants
// after every step.
func TestRandomGamesKeepInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31))
		g := New("p0", WithRand(rng))
		players := 2 + int(seed%3)
		for i := 1; i < players; i++ {
			g.AddPlayer(seatNames[i%len(seatNames)] + string(rune('0'+i)))
		}
		require.NoError(t, g.Start())

		finishedCount := 0
		for step := 0; step < 2000 && g.Status() == Running; step++ {
			current, ok := g.CurrentPlayer()
			require.True(t, ok)
			require.False(t, current.IsFinished())

			playRandomMove(t, g, current, rng)

			require.Equal(t, deck.TotalCards, totalCards(g), "seed %d step %d", seed, step)
			if symbol, ok := g.ActiveCards().ActiveSymbol(); ok {
				for _, c := range g.ActiveCards().Cards() {
					require.Equal(t, symbol, c.Symbol)
				}
			}

			finished := g.FinishedPlayers()
			require.GreaterOrEqual(t, len(finished), finishedCount)
			for rank, p := range finished {
				position, _ := p.Position()
				require.Equal(t, rank, position)
			}
			finishedCount = len(finished)
		}
	}
}

func playRandomMove(t *testing.T, g *Game, current *Player, rng *rand.Rand) {
	t.Helper()

	var playable []deck.Card
	for _, c := range current.Cards() {
		if g.CanPlayCard(c) {
			playable = append(playable, c)
		}
	}

	if len(playable) > 0 {
		c := playable[rng.IntN(len(playable))]
		var newColor *deck.Color
		if c.ShouldBeBlack() {
			newColor = color(deck.Colors[rng.IntN(len(deck.Colors))])
		}
		require.NoError(t, g.PlayCard(current.Name(), c, newColor))
		return
	}

	if err := g.AcceptSkip(current.Name()); err == nil {
		return
	} else if !errors.Is(err, ErrNoSkipToAccept) {
		require.NoError(t, err)
	}

	_, err := g.DrawCards(current.Name())
	require.NoError(t, err)
}
