package search

import (
	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// quiescence resolves tactical noise at the horizon, per spec.md §4.7: stand-pat,
// then SEE-ordered captures, capture-promotions and quiet promotions; no other
// quiet moves. ok is false if the shared stop flag fired mid-search.
func (w *Worker) quiescence(alpha, beta eval.Score, ply int) (eval.Score, bool) {
	if w.checkStop() {
		return 0, false
	}
	w.countNode()

	turn := w.pos.Turn()
	standPat := w.eval.Evaluate(w.pos, turn) + w.noise.Noise()
	if standPat >= beta {
		return standPat, true
	}
	if standPat > alpha {
		alpha = standPat
	}
	if ply >= MaxPly {
		return standPat, true
	}

	captures := w.pos.CaptureMoves(turn, true)
	oc := orderingContext{pos: w.pos, ts: nil, ply: ply}
	ml := NewMoveList(captures, oc)

	for {
		m, more := ml.Next()
		if !more {
			break
		}

		if m.IsCapture() && m.Promotion == board.NoPiece && eval.SEE(w.pos, m) < 0 {
			continue
		}

		w.pos.MakeMove(&m)
		if w.pos.IsChecked(turn) {
			w.pos.UnmakeMove(m)
			continue
		}

		score, ok := w.quiescence(-beta, -alpha, ply+1)
		w.pos.UnmakeMove(m)
		if !ok {
			return 0, false
		}
		score = score.Negate()

		if score >= beta {
			return score, true
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha, true
}
