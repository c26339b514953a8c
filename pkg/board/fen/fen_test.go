package fen_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"4k3/2pppp2/8/4P1K1/4PP2/3P4/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/5P2/PPPPP1PP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, tt := range tests {
		pos, halfmove, fullmove, err := fen.Decode(tt)
		require.NoError(t, err)

		assert.Equal(t, tt, fen.Encode(pos, halfmove, fullmove))
	}
}

// TestDecodeDropsDeadEnPassant checks that an en-passant target surviving in
// the FEN string but unreachable by any pawn of the side to move is dropped,
// per spec.md §4.2's en-passant normalization rule.
func TestDecodeDropsDeadEnPassant(t *testing.T) {
	// White to move, en-passant target c6 claimed but no white pawn sits
	// adjacent on rank 5 (b5 or d5) to capture it.
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/4K3/8 w - c6 0 1")
	require.NoError(t, err)

	_, ok := pos.EnPassant()
	assert.False(t, ok)
}
