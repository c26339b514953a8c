package search

import (
	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tt"
)

// nullMoveReduction is the fixed depth reduction applied to the verification
// search after a null move, per spec.md §4.7.
const nullMoveReduction = 3

// scoreToTT/scoreFromTT rebase a mate score between "distance from this node"
// (what negamax operates on) and "distance from the search root" (what the TT
// stores, so a hit at a different ply still yields the correct mate distance),
// per spec.md §4.6.
func scoreToTT(s eval.Score, ply int) eval.Score {
	switch {
	case s > eval.MateValue-1000:
		return s + eval.Score(ply)
	case s < -(eval.MateValue - 1000):
		return s - eval.Score(ply)
	default:
		return s
	}
}

func scoreFromTT(s eval.Score, ply int) eval.Score {
	switch {
	case s > eval.MateValue-1000:
		return s - eval.Score(ply)
	case s < -(eval.MateValue - 1000):
		return s + eval.Score(ply)
	default:
		return s
	}
}

// negamax is the core recursive search, per spec.md §4.7: transposition probe,
// check extension, razoring, null-move pruning, futility pruning, move-ordered
// principal-variation search with late-move reduction, and transposition store.
// prevMove is the move that led to this node (zero at the root), used for
// counter-move ordering. ok is false if the shared stop flag fired mid-search,
// in which case the returned score and pv must be discarded.
func (w *Worker) negamax(depth, ply int, alpha, beta eval.Score, prevMove board.Move) (eval.Score, []board.Move, bool) {
	if w.checkStop() {
		return 0, nil, false
	}

	isPV := beta-alpha > 1
	pos := w.pos
	turn := pos.Turn()
	hash := pos.Hash()

	if ply > 0 {
		if w.ts.isRepetition(hash) {
			return w.tap.Repetition(pos, turn), nil, true
		}
		if pos.HasInsufficientMaterial() {
			return eval.Zero, nil, true
		}
		if ply >= MaxPly {
			score := w.eval.Evaluate(pos, turn)
			return score, nil, true
		}
	}

	inCheck := pos.IsChecked(turn)
	if inCheck {
		depth++ // check extension, per spec.md §4.7
	}

	if depth <= 0 {
		score, ok := w.quiescence(alpha, beta, ply)
		return score, nil, ok
	}
	w.countNode()

	var ttMove board.Move
	if w.shared.TT != nil {
		if ttScore, ttDepth, bound, move, found := w.shared.TT.Probe(hash); found {
			ttMove = move
			if ttDepth >= depth && ply > 0 {
				s := scoreFromTT(ttScore, ply)
				switch bound {
				case tt.Exact:
					return s, nil, true
				case tt.Lower:
					if s >= beta {
						return s, nil, true
					}
				case tt.Upper:
					if s <= alpha {
						return s, nil, true
					}
				}
			}
		}
	}

	staticEval := w.eval.Evaluate(pos, turn)

	// Razoring: a hopeless-looking quiet position at shallow depth drops straight
	// into quiescence to confirm, per spec.md §4.7.
	if !isPV && !inCheck && depth <= 3 && staticEval+300 < alpha {
		score, ok := w.quiescence(alpha, beta, ply)
		if !ok {
			return 0, nil, false
		}
		if score < alpha {
			return score, nil, true
		}
	}

	// Null-move pruning: skip a move entirely and see if the opponent is still
	// losing badly, per spec.md §4.7. Disabled when the side to move holds only
	// king and pawns (zugzwang risk).
	if !isPV && !inCheck && ply > 0 && depth >= 3 && staticEval >= beta && pos.HasNonPawnMaterial(turn) {
		priorFile, priorSet := pos.MakeNullMove()
		score, _, ok := w.negamax(depth-1-nullMoveReduction, ply+1, -beta, -beta+1, board.Move{})
		pos.UnmakeNullMove(priorFile, priorSet)
		if !ok {
			return 0, nil, false
		}
		if score.Negate() >= beta {
			return beta, nil, true
		}
	}

	futilityPrune := !isPV && !inCheck && depth <= 6 && staticEval+eval.Score(100*depth) <= alpha

	pseudo := pos.PseudoLegalMoves(turn)
	oc := orderingContext{pos: pos, ts: w.ts, ply: ply, ttMove: ttMove, prevMove: prevMove}
	ml := NewMoveList(pseudo, oc)

	var (
		legalCount int
		anyLegal   bool
		bestScore  = eval.NegInf
		bestMove   board.Move
		bestPV     []board.Move
		bound      = tt.Upper
	)

	for {
		m, more := ml.Next()
		if !more {
			break
		}

		quiet := !m.IsCapture() && m.Promotion == board.NoPiece

		pos.MakeMove(&m)
		if pos.IsChecked(turn) {
			pos.UnmakeMove(m)
			continue
		}
		anyLegal = true

		if futilityPrune && quiet && legalCount > 0 && !pos.IsChecked(pos.Turn()) {
			pos.UnmakeMove(m)
			continue
		}
		legalCount++

		w.ts.pushRepetition(pos.Hash())

		var (
			score eval.Score
			pv    []board.Move
			ok    bool
		)
		switch {
		case legalCount == 1:
			score, pv, ok = w.negamax(depth-1, ply+1, -beta, -alpha, m)
		default:
			reduction := 0
			if depth >= 3 && legalCount >= 4 && quiet && !inCheck {
				reduction = 1
			}
			score, pv, ok = w.negamax(depth-1-reduction, ply+1, -alpha-1, -alpha, m)
			if ok && reduction > 0 && score.Negate() > alpha {
				score, pv, ok = w.negamax(depth-1, ply+1, -alpha-1, -alpha, m)
			}
			if ok && score.Negate() > alpha && score.Negate() < beta {
				score, pv, ok = w.negamax(depth-1, ply+1, -beta, -alpha, m)
			}
		}

		w.ts.popRepetition()
		pos.UnmakeMove(m)

		if !ok {
			return 0, nil, false
		}
		score = score.Negate()

		if score > bestScore {
			bestScore = score
			bestMove = m
			bestPV = append([]board.Move{m}, pv...)
		}
		if score > alpha {
			alpha = score
			bound = tt.Exact
		}
		if alpha >= beta {
			bound = tt.Lower
			if quiet {
				w.ts.recordKiller(ply, m)
				w.ts.bumpHistory(m, depth)
				w.ts.recordCounter(prevMove, m)
			}
			break
		}
	}

	if !anyLegal {
		if inCheck {
			return eval.Mated(), nil, true
		}
		return eval.Zero, nil, true
	}

	// Every legal move was futility-pruned without being searched: fall back to
	// the static evaluation rather than reporting a best move that was never
	// explored, per spec.md §4.7.
	if legalCount == 0 {
		return staticEval, nil, true
	}

	if w.shared.TT != nil {
		w.shared.TT.Store(hash, scoreToTT(bestScore, ply), depth, bound, bestMove)
	}

	return bestScore, bestPV, true
}
