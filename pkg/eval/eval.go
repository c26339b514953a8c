package eval

import (
	"github.com/corvidchess/corvid/pkg/board"
)

// Evaluator is a static position evaluator: the interface the search consumes, per
// spec.md §9 ("the hand-written tapered evaluator and the learned evaluator are two
// implementations of the same interface"). A future NNUE-style evaluator is a
// drop-in replacement; none ships here (Non-goals, spec.md §1).
type Evaluator interface {
	// Evaluate returns the position score in centipawns, relative to the side to move.
	Evaluate(pos *board.Position, turn board.Color) Score
}

// NominalValue is the material value of a piece in centipawns, per spec.md §4.4.
func NominalValue(p board.Piece) Score {
	switch p {
	case board.Pawn:
		return 100
	case board.Knight:
		return 320
	case board.Bishop:
		return 330
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	case board.King:
		return 20000
	default:
		return 0
	}
}

// phaseWeight is the game-phase contribution of one piece, per spec.md §4.4: pawn
// 0, knight/bishop 1, rook 2, queen 4, king 0, summed and clamped to [0,24].
func phaseWeight(p board.Piece) int {
	switch p {
	case board.Knight, board.Bishop:
		return 1
	case board.Rook:
		return 2
	case board.Queen:
		return 4
	default:
		return 0
	}
}

const maxPhase = 24

// Tapered is the hand-written evaluator: tapered material + piece-square tables,
// a phase estimate, insufficient-material draw detection, and contempt for
// repeated positions, per spec.md §4.4. Sacrifice is an optional pluggable addend
// (spec.md §9); nil disables it.
type Tapered struct {
	Contempt  Score // magnitude applied against repetition, per spec.md §4.4; default ~100 (1 pawn)
	Sacrifice *Sacrifice
}

// Evaluate implements Evaluator.
func (t Tapered) Evaluate(pos *board.Position, turn board.Color) Score {
	if pos.HasInsufficientMaterial() {
		return Zero
	}

	mg, eg, phase := t.taper(pos)
	phase = clampPhase(phase)

	score := (mg*Score(phase) + eg*Score(maxPhase-phase)) / maxPhase
	if turn == board.Black {
		score = -score
	}

	if t.Sacrifice != nil {
		score += t.Sacrifice.Evaluate(pos, turn)
	}
	return score
}

// Repetition returns the contempt-adjusted score to report when the current node's
// fingerprint already occurs in the search's history, per spec.md §4.4: negative if
// the side to move is better by more than the contempt margin (avoid the draw),
// symmetric if worse, zero otherwise.
func (t Tapered) Repetition(pos *board.Position, turn board.Color) Score {
	if t.Contempt == 0 {
		return Zero
	}
	material := t.materialOnly(pos, turn)
	switch {
	case material > t.Contempt:
		return -t.Contempt
	case material < -t.Contempt:
		return t.Contempt
	default:
		return Zero
	}
}

func (t Tapered) materialOnly(pos *board.Position, turn board.Color) Score {
	var s Score
	for p := board.Pawn; p <= board.Queen; p++ {
		s += Score(pos.Piece(turn, p).PopCount()-pos.Piece(turn.Opponent(), p).PopCount()) * NominalValue(p)
	}
	return s
}

// taper computes the white-relative middlegame and endgame scores plus the phase.
func (t Tapered) taper(pos *board.Position) (mg, eg Score, phase int) {
	for c := board.ZeroColor; c < board.NumColors; c++ {
		sign := Score(1)
		if c == board.Black {
			sign = -1
		}
		for p := board.Pawn; p <= board.King; p++ {
			bb := pos.Piece(c, p)
			for bb != 0 {
				sq, rest := bb.PopLSB()
				bb = rest

				idx := sq
				if c == board.Black {
					idx = sq.Flip()
				}

				mg += sign * (NominalValue(p) + pstMiddlegame[p][idx])
				eg += sign * (NominalValue(p) + pstEndgame[p][idx])
				phase += phaseWeight(p)
			}
		}
	}
	return mg, eg, phase
}

func clampPhase(phase int) int {
	if phase > maxPhase {
		return maxPhase
	}
	if phase < 0 {
		return 0
	}
	return phase
}
