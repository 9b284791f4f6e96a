package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/core/pkg/board"
	"github.com/castellan/core/pkg/board/fen"
)

func TestNewPositionRejectsPawnOnBackRank(t *testing.T) {
	_, err := board.NewPosition([]board.Placement{
		{Square: board.A8, Color: board.White, Piece: board.Pawn},
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
	}, 0, board.ZeroSquare, true, 0, 0)
	assert.Error(t, err)
}

func TestNewPositionRejectsWrongNumberOfKings(t *testing.T) {
	_, err := board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
	}, 0, board.ZeroSquare, true, 0, 0)
	assert.Error(t, err)

	_, err = board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.D1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
	}, 0, board.ZeroSquare, true, 0, 0)
	assert.Error(t, err)
}

func TestNewPositionRejectsAdjacentKings(t *testing.T) {
	_, err := board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E2, Color: board.Black, Piece: board.King},
	}, 0, board.ZeroSquare, true, 0, 0)
	assert.Error(t, err)
}

func TestNewPositionRejectsCastlingRightsWithoutHomeSquares(t *testing.T) {
	_, err := board.NewPosition([]board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
	}, board.WhiteKingSideCastle, board.ZeroSquare, true, 0, 0)
	assert.Error(t, err)
}

func TestMakeUnmakeRoundTrip(t *testing.T) {
	cases := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
	}
	for _, c := range cases {
		pos := mustDecode(t, c)
		before := fen.Encode(pos)

		stack := make([]board.Move, board.MaxMovesPerPosition)
		n := board.GenerateMoves(pos, stack, 0)
		require.Greater(t, n, 0, c)

		for i := 0; i < n; i++ {
			m := stack[i]
			pos.MakeMove(m)
			pos.UnmakeMove(m)
			assert.Equal(t, before, fen.Encode(pos), "move %v in %v", m, c)
		}
	}
}

func TestEnPassantCaptureRoundTrip(t *testing.T) {
	pos := mustDecode(t, "rnbqkbnr/pp1ppppp/8/8/2pPP3/8/PPP2PPP/RNBQKBNR b KQkq d3 0 3")
	before := fen.Encode(pos)

	from, to, _, err := board.ParseMove("c4d3")
	require.NoError(t, err)

	stack := make([]board.Move, board.MaxMovesPerPosition)
	n := board.GenerateMoves(pos, stack, 0)

	var ep board.Move
	found := false
	for i := 0; i < n; i++ {
		if stack[i].From() == from && stack[i].To() == to && stack[i].Type() == board.MoveEnPassant {
			ep = stack[i]
			found = true
		}
	}
	require.True(t, found)

	pos.MakeMove(ep)
	assert.Equal(t, board.NoPiece, pos.PieceKindOn(board.White, board.D4))

	pos.UnmakeMove(ep)
	assert.Equal(t, before, fen.Encode(pos))
}
