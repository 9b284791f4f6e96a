package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/core/pkg/board"
	"github.com/castellan/core/pkg/board/fen"
	"github.com/castellan/core/pkg/eval"
	"github.com/castellan/core/pkg/search"
)

func mustDecode(t *testing.T, s string) *board.Position {
	t.Helper()
	pos, err := fen.Decode(s)
	require.NoError(t, err)
	return pos
}

// fullMinimax is an unpruned reference implementation (always explores every move, no alpha-beta
// cutoff) used to confirm that pruning never changes the root score it returns.
func fullMinimax(pos *board.Position, evaluator eval.Evaluator, depth int) eval.Evaluation {
	if depth == 0 {
		return evaluator.Evaluate(pos)
	}

	stack := make([]board.Move, board.MaxMovesPerPosition)
	n := board.GenerateMoves(pos, stack, 0)

	best := eval.LossIn(0)
	legal := 0
	for i := 0; i < n; i++ {
		m := stack[i]
		pos.MakeMove(m)
		if pos.DefendersKingIsInCheck() {
			pos.UnmakeMove(m)
			continue
		}
		legal++
		score := fullMinimax(pos, evaluator, depth-1).Negate()
		pos.UnmakeMove(m)
		if eval.Better(score, best) {
			best = score
		}
	}
	if legal == 0 {
		if pos.IsChecked(pos.Turn()) {
			return eval.LossIn(0)
		}
		return eval.Drawn()
	}
	return best
}

func TestAlphaBetaMatchesFullMinimax(t *testing.T) {
	positions := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1",
	}
	for _, p := range positions {
		for depth := 1; depth <= 3; depth++ {
			pos := mustDecode(t, p)
			want := fullMinimax(pos, eval.Material{}, depth)

			pos2 := mustDecode(t, p)
			got, err := search.Search(context.Background(), pos2, eval.Material{}, depth, time.Time{})
			require.NoError(t, err)

			assert.Equal(t, want, got.Eval, "position %q depth %d", p, depth)
		}
	}
}

func TestSearchFindsMateInThree(t *testing.T) {
	pos := mustDecode(t, "r2q1rk1/pb3p1p/1pn3p1/2p1R2Q/2P5/2BB4/P4PPP/R5K1 w - - 0 21")
	pv, err := search.Search(context.Background(), pos, eval.Material{}, 6, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, pv.Moves)
	assert.Equal(t, "h5h7", pv.Moves[0].String())

	plies, ok := pv.Eval.IsMate()
	require.True(t, ok)
	assert.LessOrEqual(t, plies, 5)
}

func TestSearchFindsMateInThreeSecond(t *testing.T) {
	pos := mustDecode(t, "r2q2kr/ppp1b1pp/2n5/4B3/3Pn1b1/2P5/PP4PP/RN1Q1RK1 w - - 1 12")
	pv, err := search.Search(context.Background(), pos, eval.Material{}, 6, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, pv.Moves)
	assert.Equal(t, "d1b3", pv.Moves[0].String())
}

func TestSearchAbortsPastDeadline(t *testing.T) {
	pos := mustDecode(t, fen.Initial)
	_, err := search.Search(context.Background(), pos, eval.Material{}, 8, time.Now().Add(-time.Second))
	assert.ErrorIs(t, err, search.ErrAborted)
}

func TestSearchAbortsOnCancelledContext(t *testing.T) {
	pos := mustDecode(t, fen.Initial)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := search.Search(ctx, pos, eval.Material{}, 8, time.Time{})
	assert.ErrorIs(t, err, search.ErrAborted)
}

// slowEvaluator sleeps a fixed delay per call, turning wall-clock deadline expiry into a
// deterministic function of how many leaves have been evaluated so far.
type slowEvaluator struct {
	delay time.Duration
}

func (e slowEvaluator) Evaluate(pos *board.Position) eval.Evaluation {
	time.Sleep(e.delay)
	return eval.Material{}.Evaluate(pos)
}

// TestSearchReturnsPartialPVOnAbort covers the abort contract in spec.md §4.4: an abort with at
// least one completed root move is success, reporting the best line found so far, not ErrAborted.
func TestSearchReturnsPartialPVOnAbort(t *testing.T) {
	pos := mustDecode(t, fen.Initial) // 20 legal root moves
	deadline := time.Now().Add(70 * time.Millisecond)

	pv, err := search.Search(context.Background(), pos, slowEvaluator{delay: 20 * time.Millisecond}, 1, deadline)
	require.NoError(t, err)
	require.NotEmpty(t, pv.Moves)
	assert.Less(t, pv.Nodes, uint64(21), "search should have been cut off before exhausting all root moves")
}
