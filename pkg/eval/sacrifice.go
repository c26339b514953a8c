package eval

import "github.com/corvidchess/corvid/pkg/board"

// Sacrifice is a pluggable evaluator addend scoring "sacrifice" patterns as rules
// over material counts, per spec.md §9: "specified as rules over material counts
// {queens, rooks, minors, pawns}... not required for correctness." It is off by
// default (Tapered.Sacrifice == nil) and, when enabled, rewards a material deficit
// near the enemy king when compensated by active pieces pinning defenders -- the
// same pin detector the teacher's eval package used for positional bonuses.
type Sacrifice struct {
	// Threshold is the minimum material deficit (in centipawns, absolute) that
	// triggers evaluation of compensation; below it, no bonus is computed.
	Threshold Score
	// BonusPerPin is the bonus awarded for each enemy piece pinned in front of
	// its king while the side to move runs a material deficit.
	BonusPerPin Score
}

// DefaultSacrifice mirrors commonly tuned values: a half-pawn threshold and a
// third-of-a-pawn bonus per pin.
var DefaultSacrifice = Sacrifice{Threshold: 50, BonusPerPin: 30}

// Evaluate returns the sacrifice-compensation bonus for the side to move.
func (s Sacrifice) Evaluate(pos *board.Position, turn board.Color) Score {
	deficit := s.materialDeficit(pos, turn)
	if deficit < s.Threshold {
		return Zero
	}

	pins := FindPins(pos, turn, pos.King(turn.Opponent()))
	if len(pins) == 0 {
		return Zero
	}
	return Score(len(pins)) * s.BonusPerPin
}

func (s Sacrifice) materialDeficit(pos *board.Position, turn board.Color) Score {
	opp := turn.Opponent()
	var ours, theirs Score
	for p := board.Pawn; p <= board.Queen; p++ {
		ours += Score(pos.Piece(turn, p).PopCount()) * NominalValue(p)
		theirs += Score(pos.Piece(opp, p).PopCount()) * NominalValue(p)
	}
	if theirs > ours {
		return theirs - ours
	}
	return Zero
}

// Pin represents one pin: a defender that cannot move off the line between the
// attacker and the target (here, always the enemy king) without exposing it.
type Pin struct {
	Attacker, Pinned board.Square
}

// FindPins returns every piece of `side`'s opponent pinned against the
// given king square by a rook/bishop/queen of `side`, per the teacher's
// eval.FindPins x-ray technique: find sliders already attacking the king's ray,
// then check whether removing the candidate pinned piece exposes an attacker of
// the appropriate type along the same ray.
func FindPins(pos *board.Position, side board.Color, king board.Square) []Pin {
	if king == board.NoSquare {
		return nil
	}
	opp := side.Opponent()
	occ := pos.All()

	var pins []Pin

	rookRay := board.RookAttackboard(occ, king)
	candidates := rookRay & pos.Color(opp)
	for candidates != 0 {
		pinned, rest := candidates.PopLSB()
		candidates = rest

		withoutPinned := occ &^ board.BitMask(pinned)
		exposed := (board.RookAttackboard(withoutPinned, king) &^ rookRay) & (pos.Piece(side, board.Rook) | pos.Piece(side, board.Queen))
		if exposed != 0 {
			pins = append(pins, Pin{Attacker: exposed.LastPopSquare(), Pinned: pinned})
		}
	}

	bishopRay := board.BishopAttackboard(occ, king)
	candidates = bishopRay & pos.Color(opp)
	for candidates != 0 {
		pinned, rest := candidates.PopLSB()
		candidates = rest

		withoutPinned := occ &^ board.BitMask(pinned)
		exposed := (board.BishopAttackboard(withoutPinned, king) &^ bishopRay) & (pos.Piece(side, board.Bishop) | pos.Piece(side, board.Queen))
		if exposed != 0 {
			pins = append(pins, Pin{Attacker: exposed.LastPopSquare(), Pinned: pinned})
		}
	}

	return pins
}
