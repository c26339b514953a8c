package eval

import "github.com/corvidchess/corvid/pkg/board"

// SEE estimates the material outcome of a capture sequence on a single square,
// per spec.md §4.5: simulate the first capture, repeatedly locate the least
// valuable attacker of the side now to move among the remaining pieces, record
// the swap score, update occupancy so sliding x-rays become visible, and
// back-propagate with gain[i-1] = -max(-gain[i-1], gain[i]).
func SEE(pos *board.Position, m board.Move) Score {
	if !m.IsCapture() {
		return Zero
	}

	to := m.To
	occ := pos.All()

	var gain [32]Score
	depth := 0

	attacker := m.Piece
	captured := m.Capture
	gain[depth] = NominalValue(captured)

	occ &^= board.BitMask(m.From)
	side := pos.Turn().Opponent() // side to move after m is applied

	for depth < len(gain)-1 {
		sq, piece, ok := leastValuableAttacker(pos, occ, to, side)
		if !ok {
			break // no one left to continue the exchange
		}

		depth++
		gain[depth] = NominalValue(attacker) - gain[depth-1]
		if Max(-gain[depth-1], gain[depth]) < 0 {
			break // further capture is clearly losing for the side to move; stop early
		}

		occ &^= board.BitMask(sq)
		attacker = piece
		side = side.Opponent()
	}

	for depth > 0 {
		gain[depth-1] = -Max(-gain[depth-1], gain[depth])
		depth--
	}
	return gain[0]
}

// leastValuableAttacker finds the cheapest piece of `side` that attacks `to` given
// occupancy `occ` (which may differ from the live board, as capturers are removed
// to expose x-ray attackers).
func leastValuableAttacker(pos *board.Position, occ board.Bitboard, to board.Square, side board.Color) (board.Square, board.Piece, bool) {
	if bb := board.PawnAttackboard(side.Opponent(), board.BitMask(to)) & pos.Piece(side, board.Pawn) & occ; bb != 0 {
		return bb.LastPopSquare(), board.Pawn, true
	}
	if bb := board.KnightAttackboard(to) & pos.Piece(side, board.Knight) & occ; bb != 0 {
		return bb.LastPopSquare(), board.Knight, true
	}
	if bb := board.BishopAttackboard(occ, to) & pos.Piece(side, board.Bishop) & occ; bb != 0 {
		return bb.LastPopSquare(), board.Bishop, true
	}
	if bb := board.RookAttackboard(occ, to) & pos.Piece(side, board.Rook) & occ; bb != 0 {
		return bb.LastPopSquare(), board.Rook, true
	}
	if bb := (board.RookAttackboard(occ, to) | board.BishopAttackboard(occ, to)) & pos.Piece(side, board.Queen) & occ; bb != 0 {
		return bb.LastPopSquare(), board.Queen, true
	}
	if bb := board.KingAttackboard(to) & pos.Piece(side, board.King) & occ; bb != 0 {
		return bb.LastPopSquare(), board.King, true
	}
	return board.NoSquare, board.NoPiece, false
}

// IsNonLosingCapture signs a capture as non-losing (winning or equal) by SEE, used
// by move ordering to bucket captures per spec.md §4.5/§4.7.
func IsNonLosingCapture(pos *board.Position, m board.Move) bool {
	return SEE(pos, m) >= 0
}
