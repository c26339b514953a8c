package search

import (
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// aspirationDelta is the initial half-width of the aspiration window around the
// previous iteration's score, per spec.md §4.7.
const aspirationDelta = 25

// aspirationStartDepth is the first depth at which aspiration windows are used;
// shallower iterations search the full [-Inf,Inf] window since there is no prior
// score to center on.
const aspirationStartDepth = 5

// Progress is reported to the caller once per completed iteration, so a UCI
// driver can emit an `info` line per spec.md §6.
type Progress func(PV)

// Iterate runs iterative deepening from the worker's current position up to
// maxDepth (or until the shared stop flag fires), widening a fail-soft
// aspiration window around each iteration's score once the search is deep
// enough for the previous score to be a meaningful center, per spec.md §4.7.
// report is invoked after every completed iteration; it may be nil. It is
// always invoked for the main worker's iterations, and never for ancillary Lazy
// SMP workers (the caller decides which is which by passing report or not).
func (w *Worker) Iterate(maxDepth int, report Progress) PV {
	start := time.Now()
	var best PV

	score := eval.Zero
	for depth := 1; depth <= maxDepth; depth++ {
		alpha, beta := eval.NegInf, eval.Inf
		if depth >= aspirationStartDepth {
			alpha = score - aspirationDelta
			beta = score + aspirationDelta
		}

		var (
			s  eval.Score
			pv []board.Move
			ok bool
		)
		for {
			s, pv, ok = w.rootSearch(depth, alpha, beta)
			if !ok {
				return best
			}
			if s <= alpha {
				alpha = eval.Max(eval.NegInf, alpha-aspirationDelta*2)
				continue
			}
			if s >= beta {
				beta = eval.Min(eval.Inf, beta+aspirationDelta*2)
				continue
			}
			break
		}

		score = s
		best = PV{Depth: depth, Score: s, Nodes: w.shared.Nodes.Load(), Time: time.Since(start), Moves: pv}
		if report != nil {
			report(best)
		}
	}

	return best
}
