// Package search implements iterative-deepening negamax with alpha-beta pruning,
// quiescence, null-move/razoring/futility/late-move-reduction pruning, and move
// ordering over a shared transposition table, per spec.md §4.7.
package search

import (
	"fmt"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// MaxPly bounds the fixed-size per-ply killer table and
// the hard recursion depth the search will ever reach, including check
// extensions.
const MaxPly = 128

// PV is the principal variation produced by one completed iteration, per
// spec.md §4.7's progress line and §6's `info` output.
type PV struct {
	Depth int
	Score eval.Score
	Nodes uint64
	Time  time.Duration
	Moves []board.Move
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%d score=%v nodes=%d time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, board.PrintMoves(p.Moves))
}

func (p PV) BestMove() board.Move {
	if len(p.Moves) == 0 {
		return board.Move{}
	}
	return p.Moves[0]
}

// Limits bounds a single search by depth only (there is no node budget); zero
// means unlimited. Time is enforced by the caller (searchctl) via the Stop
// flag, not here.
type Limits struct {
	Depth uint
}
