package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/castellan/core/pkg/board"
)

func TestBitMaskAndPopCount(t *testing.T) {
	bb := board.BitMask(board.E4) | board.BitMask(board.A1)
	assert.Equal(t, 2, bb.PopCount())
	assert.True(t, bb.IsSet(board.E4))
	assert.False(t, bb.IsSet(board.E5))
}

func TestPopLSB(t *testing.T) {
	bb := board.BitMask(board.H1) | board.BitMask(board.D4)
	sq := bb.PopLSB()
	assert.Equal(t, board.H1, sq)
	assert.Equal(t, 1, bb.PopCount())
}

func TestKnightAttacksCorner(t *testing.T) {
	attacks := board.KnightAttacks(board.A1)
	assert.Equal(t, 2, attacks.PopCount())
	assert.True(t, attacks.IsSet(board.B3))
	assert.True(t, attacks.IsSet(board.C2))
}

func TestKingAttacksCenter(t *testing.T) {
	attacks := board.KingAttacks(board.E4)
	assert.Equal(t, 8, attacks.PopCount())
}

func TestBishopRayAttacksDoNotWrap(t *testing.T) {
	attacks := board.BishopRayAttacks(board.H1)
	assert.False(t, attacks.IsSet(board.A2))
	assert.True(t, attacks.IsSet(board.A8))
}

func TestPawnAttacksFrom(t *testing.T) {
	white := board.PawnAttacksFrom(board.White, board.E4)
	assert.True(t, white.IsSet(board.D5))
	assert.True(t, white.IsSet(board.F5))
	assert.Equal(t, 2, white.PopCount())

	black := board.PawnAttacksFrom(board.Black, board.E4)
	assert.True(t, black.IsSet(board.D3))
	assert.True(t, black.IsSet(board.F3))
}
