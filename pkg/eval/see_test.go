package eval_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSEE checks the static-exchange estimate on hand-picked captures against
// an independently reasoned outcome, per spec.md §8: "SEE is signed correctly
// against an independently computed full-tree minimax ... with <=5 attackers
// on the target square."
func TestSEE(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		move     string
		expected eval.Score
	}{
		{
			// White rook takes a defended pawn on e5: Rxe5, Nxe5 -- a clean
			// loss of rook (500) for pawn (100).
			name:     "losing rook takes defended pawn",
			fen:      "4k3/8/8/4p3/4R3/5n2/8/K7 w - - 0 1",
			move:     "e4e5",
			expected: eval.NominalValue(board.Pawn) - eval.NominalValue(board.Rook),
		},
		{
			// Pawn takes an undefended pawn: a clean, unanswered win of one pawn.
			name:     "winning undefended pawn capture",
			fen:      "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1",
			move:     "e4d5",
			expected: eval.NominalValue(board.Pawn),
		},
		{
			// Pawn takes a pawn defended only by another pawn: even trade, net
			// zero once the recapture is included.
			name:     "even pawn trade",
			fen:      "4k3/8/3p4/4p3/3P4/8/8/4K3 w - - 0 1",
			move:     "d4e5",
			expected: eval.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, _, _, err := fen.Decode(tt.fen)
			require.NoError(t, err)

			var found board.Move
			var ok bool
			for _, m := range pos.LegalMoves(pos.Turn()) {
				if m.String() == tt.move {
					found, ok = m, true
					break
				}
			}
			require.True(t, ok, "move %v not found as legal in %v", tt.move, tt.fen)

			assert.Equal(t, tt.expected, eval.SEE(pos, found))
		})
	}
}

func TestIsNonLosingCapture(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/4p3/4R3/5n2/8/K7 w - - 0 1")
	require.NoError(t, err)

	var rxe5 board.Move
	for _, m := range pos.LegalMoves(pos.Turn()) {
		if m.String() == "e4e5" {
			rxe5 = m
		}
	}
	assert.False(t, eval.IsNonLosingCapture(pos, rxe5))
}
