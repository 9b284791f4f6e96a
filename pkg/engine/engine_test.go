package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/core/pkg/board/fen"
	"github.com/castellan/core/pkg/engine"
	"github.com/castellan/core/pkg/search"
)

func TestResetAndPosition(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test")
	assert.Equal(t, fen.Initial, e.Position())

	custom := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	require.NoError(t, e.Reset(ctx, custom))
	assert.Equal(t, custom, e.Position())
	assert.Empty(t, e.History())
}

func TestResetRejectsInvalidFEN(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test")
	assert.Error(t, e.Reset(ctx, "not a fen"))
}

func TestMoveAndTakeBack(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test")

	require.NoError(t, e.Move(ctx, "e2e4"))
	assert.Equal(t, []string{"e2e4"}, e.History())
	assert.NotEqual(t, fen.Initial, e.Position())

	require.NoError(t, e.TakeBack(ctx))
	assert.Empty(t, e.History())
	assert.Equal(t, fen.Initial, e.Position())
}

func TestMoveRejectsIllegalMove(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test")
	assert.ErrorIs(t, e.Move(ctx, "e2e5"), engine.ErrIllegalMove)
}

func TestMoveRejectsMoveLeavingKingInCheck(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test")
	require.NoError(t, e.Reset(ctx, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"))
	assert.ErrorIs(t, e.Move(ctx, "f3f4"), engine.ErrIllegalMove)
}

func TestTakeBackWithNoHistory(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test")
	assert.Error(t, e.TakeBack(ctx))
}

func TestFindBestMoveReturnsLegalMove(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test", engine.WithDepth(3))

	pv, err := e.FindBestMove(ctx, 0, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, pv.Moves)

	require.NoError(t, e.Move(ctx, pv.Moves[0].String()))
}

func TestFindBestMoveDoesNotMutatePosition(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test", engine.WithDepth(3))
	before := e.Position()

	_, err := e.FindBestMove(ctx, 2, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, before, e.Position())
}

func TestStopCancelsInFlightSearch(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test", engine.WithDepth(10))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := e.FindBestMove(ctx, 0, time.Time{})
		assert.ErrorIs(t, err, search.ErrAborted)
	}()

	for e.Searching() == false {
		time.Sleep(time.Millisecond)
	}
	e.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("FindBestMove did not return after Stop")
	}
}

func TestStopIsNoOpWhenIdle(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "castellan", "test")
	e.Stop() // must not panic
}
