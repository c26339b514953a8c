package eval_test

import (
	"testing"

	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEvaluateIsSideToMoveRelative checks that flipping only the side to move
// (not the position) negates the score, per spec.md §4.4's "relative to the
// side to move" contract.
func TestEvaluateIsSideToMoveRelative(t *testing.T) {
	pos, _, _, err := fen.Decode("rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 2")
	require.NoError(t, err)

	e := eval.Tapered{}
	white := e.Evaluate(pos, pos.Turn())
	black := e.Evaluate(pos, pos.Turn().Opponent())
	assert.Equal(t, white, -black)
}

func TestEvaluateInsufficientMaterialIsZero(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	e := eval.Tapered{Contempt: 50}
	assert.Equal(t, eval.Zero, e.Evaluate(pos, pos.Turn()))
}

func TestEvaluateMaterialAdvantageIsPositive(t *testing.T) {
	// White is up a whole rook.
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	e := eval.Tapered{}
	assert.Greater(t, e.Evaluate(pos, pos.Turn()), eval.Zero)
	assert.Less(t, e.Evaluate(pos, pos.Turn().Opponent()), eval.Zero)
}

func TestRepetitionZeroContemptIsAlwaysZero(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	e := eval.Tapered{Contempt: 0}
	assert.Equal(t, eval.Zero, e.Repetition(pos, pos.Turn()))
}

// TestRepetitionAvoidsDrawingAWinningPosition checks spec.md §4.4's contempt
// rule: a side materially ahead by more than the contempt margin is penalized
// for repeating into a draw, discouraging the engine from settling for one.
func TestRepetitionAvoidsDrawingAWinningPosition(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	e := eval.Tapered{Contempt: 50}
	assert.Equal(t, -e.Contempt, e.Repetition(pos, pos.Turn()))
	assert.Equal(t, e.Contempt, e.Repetition(pos, pos.Turn().Opponent()))
}

func TestRepetitionNearEqualMaterialIsZero(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	e := eval.Tapered{Contempt: 50}
	assert.Equal(t, eval.Zero, e.Repetition(pos, pos.Turn()))
}
