package board_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/stretchr/testify/require"
)

// TestMakeUnmakeRoundTrip walks every legal move, a few plies deep, and checks
// that UnmakeMove exactly restores the hash and FEN of the position it came
// from -- spec.md §4.2's "MakeMove/UnmakeMove are exact inverses".
func TestMakeUnmakeRoundTrip(t *testing.T) {
	positions := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, start := range positions {
		t.Run(start, func(t *testing.T) {
			pos, _, _, err := fen.Decode(start)
			require.NoError(t, err)

			walkAndCheckRoundTrip(t, pos, 3)
		})
	}
}

func walkAndCheckRoundTrip(t *testing.T, pos *board.Position, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}

	turn := pos.Turn()
	beforeHash := pos.Hash()
	beforeFEN := fen.Encode(pos, 0, 1)

	for _, m := range pos.LegalMoves(turn) {
		pos.MakeMove(&m)
		walkAndCheckRoundTrip(t, pos, depth-1)
		pos.UnmakeMove(m)

		require.Equal(t, beforeHash, pos.Hash(), "hash not restored after unmaking %v", m)
		require.Equal(t, beforeFEN, fen.Encode(pos, 0, 1), "position not restored after unmaking %v", m)
	}
}
