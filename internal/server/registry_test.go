package server

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/unoserver/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryWith(t *testing.T) {
	r := NewRegistry(quartz.NewReal(), time.Second)
	g := game.New("alice", game.WithID("game000001"))
	require.NoError(t, r.Add(g))
	assert.Error(t, r.Add(g))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []string{"game000001"}, r.IDs())

	var seen *game.Game
	require.NoError(t, r.With(context.Background(), "game000001", func(g *game.Game) error {
		seen = g
		return nil
	}))
	assert.Same(t, g, seen)

	err := r.With(context.Background(), "missing", func(*game.Game) error { return nil })
	assert.ErrorIs(t, err, ErrGameNotFound)

	r.Remove("game000001")
	assert.Equal(t, 0, r.Len())
}

func TestRegistrySerializesAccess(t *testing.T) {
	r := NewRegistry(quartz.NewReal(), 5*time.Second)
	require.NoError(t, r.Add(game.New("alice", game.WithID("game000001"))))

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.With(context.Background(), "game000001", func(*game.Game) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestRegistryBusyAfterLockTimeout(t *testing.T) {
	mockClock := quartz.NewMock(t)
	r := NewRegistry(mockClock, 250*time.Millisecond)
	require.NoError(t, r.Add(game.New("alice", game.WithID("game000001"))))

	// hold the game as a slow request would
	r.games["game000001"].lock <- struct{}{}

	done := make(chan error, 1)
	go func() {
		done <- r.With(context.Background(), "game000001", func(*game.Game) error { return nil })
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case err := <-done:
			assert.ErrorIs(t, err, ErrGameBusy)
			return
		case <-ctx.Done():
			t.Fatal("With did not give up on a busy game")
		default:
			mockClock.Advance(250 * time.Millisecond).MustWait(ctx)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestRegistryContextCancelled(t *testing.T) {
	r := NewRegistry(quartz.NewReal(), time.Minute)
	require.NoError(t, r.Add(game.New("alice", game.WithID("game000001"))))
	r.games["game000001"].lock <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.With(ctx, "game000001", func(*game.Game) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
