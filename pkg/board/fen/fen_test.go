package fen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/core/pkg/board/fen"
)

func TestDecodeInitial(t *testing.T) {
	pos, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	assert.True(t, pos.WhiteToMove())
	assert.Equal(t, 0, pos.StaticPlies())
	assert.Equal(t, 0, pos.TotalPlies())
	assert.Equal(t, "KQkq", pos.Castling().String())
	_, ok := pos.EnPassant()
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		fen.Initial,
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"2r3k1/pp2npp1/3r2qp/8/2BBp3/1PP3Rb/P4P2/R2Q3K b - - 0 28",
	}
	for _, c := range cases {
		pos, err := fen.Decode(c)
		require.NoError(t, err, c)
		assert.Equal(t, c, fen.Encode(pos), c)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w ZZZZ - 0 1",
		"8/8/8/8/8/8/8/8 w - - 0 1",
	}
	for _, c := range cases {
		_, err := fen.Decode(c)
		assert.Error(t, err, c)
	}
}
