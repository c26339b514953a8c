package board_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/require"
)

// Community-standard perft counts, used to catch move-generator regressions.
// See: https://www.chessprogramming.org/Perft_Results.
func TestPerft(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		depth    int
		expected int64
	}{
		{"startpos depth 1", fen.Initial, 1, 20},
		{"startpos depth 2", fen.Initial, 2, 400},
		{"startpos depth 3", fen.Initial, 3, 8902},
		{"startpos depth 4", fen.Initial, 4, 197281},
		{"kiwipete depth 1", kiwipete, 1, 48},
		{"kiwipete depth 2", kiwipete, 2, 2039},
		{"kiwipete depth 3", kiwipete, 3, 97862},
		{"position 3 depth 1", positionThree, 1, 14},
		{"position 3 depth 4", positionThree, 4, 43238},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, _, _, err := fen.Decode(tt.fen)
			require.NoError(t, err)

			require.Equal(t, tt.expected, board.Perft(pos, tt.depth))
		})
	}
}

// kiwipete is the well-known perft stress position exercising castling, en
// passant, and promotions together.
const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

// positionThree stresses en-passant pins and discovered checks.
const positionThree = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
