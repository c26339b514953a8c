package board

// PseudoLegalMoves generates every pseudo-legal move for the side to move, per
// spec.md §4.3: per-piece attack-table lookups, full pawn handling (single/double
// push, diagonal capture, en passant, promotion), and castling. Moves that would
// leave the mover's own king in check are not filtered out here -- see LegalMoves.
func (p *Position) PseudoLegalMoves(turn Color) []Move {
	moves := make([]Move, 0, 48)
	moves = p.genPawnMoves(turn, moves)
	moves = p.genPieceMoves(turn, Knight, moves)
	moves = p.genPieceMoves(turn, Bishop, moves)
	moves = p.genPieceMoves(turn, Rook, moves)
	moves = p.genPieceMoves(turn, Queen, moves)
	moves = p.genKingMoves(turn, moves)
	return moves
}

// LegalMoves filters PseudoLegalMoves down to moves that do not leave the mover's
// own king in check, per spec.md §4.3: "make the move, check whether the now-quiet
// king is attacked, unmake, discard if attacked."
func (p *Position) LegalMoves(turn Color) []Move {
	pseudo := p.PseudoLegalMoves(turn)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if p.IsLegal(m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// IsLegal reports whether m, applied from the current position, leaves the mover's
// own king safe from check.
func (p *Position) IsLegal(m Move) bool {
	turn := p.turn
	p.MakeMove(&m)
	ok := !p.IsChecked(turn)
	p.UnmakeMove(m)
	return ok
}

// CaptureMoves returns the capture-only subset of pseudo-legal moves (captures,
// en-passant, and capture-promotions), used by quiescence search per spec.md §4.3.
// When includeQuietPromotions is set, non-capturing promotions are included too.
func (p *Position) CaptureMoves(turn Color, includeQuietPromotions bool) []Move {
	all := p.PseudoLegalMoves(turn)
	ret := make([]Move, 0, len(all))
	for _, m := range all {
		if m.IsCapture() || (includeQuietPromotions && m.Promotion != NoPiece) {
			ret = append(ret, m)
		}
	}
	return ret
}

func (p *Position) genPieceMoves(turn Color, piece Piece, moves []Move) []Move {
	occ := p.All()
	own := p.colors[turn]

	bb := p.pieces[turn][piece]
	for bb != 0 {
		from, rest := bb.PopLSB()
		bb = rest

		targets := Attackboard(occ, from, piece) &^ own
		for targets != 0 {
			to, trest := targets.PopLSB()
			targets = trest

			capture := NoPiece
			if _, cp, ok := p.At(to); ok {
				capture = cp
			}
			moves = append(moves, Move{From: from, To: to, Piece: piece, Capture: capture, Promotion: NoPiece, Type: Normal})
		}
	}
	return moves
}

func (p *Position) genKingMoves(turn Color, moves []Move) []Move {
	moves = p.genPieceMoves(turn, King, moves)
	moves = p.genCastlingMoves(turn, moves)
	return moves
}

// genCastlingMoves implements spec.md §4.3's five castling legality conditions:
// the right is held, the intermediate squares are empty, the rook is on its home
// square (implied by the right never being lost), the king is not in check, and
// neither square the king passes through is attacked.
func (p *Position) genCastlingMoves(turn Color, moves []Move) []Move {
	occ := p.All()
	opp := turn.Opponent()

	if turn == White {
		if p.castling.IsAllowed(WhiteKingSideCastle) && occ&(BitMask(F1)|BitMask(G1)) == 0 &&
			!p.IsAttacked(E1, opp) && !p.IsAttacked(F1, opp) && !p.IsAttacked(G1, opp) {
			moves = append(moves, Move{From: E1, To: G1, Piece: King, Type: KingSideCastle})
		}
		if p.castling.IsAllowed(WhiteQueenSideCastle) && occ&(BitMask(D1)|BitMask(C1)|BitMask(B1)) == 0 &&
			!p.IsAttacked(E1, opp) && !p.IsAttacked(D1, opp) && !p.IsAttacked(C1, opp) {
			moves = append(moves, Move{From: E1, To: C1, Piece: King, Type: QueenSideCastle})
		}
		return moves
	}

	if p.castling.IsAllowed(BlackKingSideCastle) && occ&(BitMask(F8)|BitMask(G8)) == 0 &&
		!p.IsAttacked(E8, opp) && !p.IsAttacked(F8, opp) && !p.IsAttacked(G8, opp) {
		moves = append(moves, Move{From: E8, To: G8, Piece: King, Type: KingSideCastle})
	}
	if p.castling.IsAllowed(BlackQueenSideCastle) && occ&(BitMask(D8)|BitMask(C8)|BitMask(B8)) == 0 &&
		!p.IsAttacked(E8, opp) && !p.IsAttacked(D8, opp) && !p.IsAttacked(C8, opp) {
		moves = append(moves, Move{From: E8, To: C8, Piece: King, Type: QueenSideCastle})
	}
	return moves
}

var promotionPieces = [4]Piece{Queen, Rook, Bishop, Knight}

func (p *Position) genPawnMoves(turn Color, moves []Move) []Move {
	occ := p.All()
	opp := turn.Opponent()
	pawns := p.pieces[turn][Pawn]
	promoRank := PawnPromotionRank(turn)

	single := PawnPushboard(occ, turn, pawns)
	for bb := single; bb != 0; {
		to, rest := bb.PopLSB()
		bb = rest
		from := pawnOrigin(turn, to, 8)
		moves = appendPawnMove(moves, from, to, NoPiece, promoRank)
	}

	double := PawnPushboard(occ, turn, single&PawnHomeRankPushed(turn)) & PawnJumpRank(turn)
	for bb := double; bb != 0; {
		to, rest := bb.PopLSB()
		bb = rest
		from := pawnOrigin(turn, to, 16)
		moves = append(moves, Move{From: from, To: to, Piece: Pawn, Type: DoublePush})
	}

	caps := PawnAttackboard(turn, pawns) & p.colors[opp]
	for bb := caps; bb != 0; {
		to, rest := bb.PopLSB()
		bb = rest
		for _, from := range pawnCaptureOrigins(turn, to, pawns) {
			_, cp, _ := p.At(to)
			moves = appendPawnCapture(moves, from, to, cp, promoRank)
		}
	}

	if p.epSet {
		epTarget := epCaptureSquare(turn, File(p.epFile))
		for _, from := range pawnCaptureOrigins(turn, epTarget, pawns) {
			moves = append(moves, Move{From: from, To: epTarget, Piece: Pawn, Capture: Pawn, Type: EnPassant})
		}
	}

	return moves
}

// epCaptureSquare returns the square a turn-colored pawn lands on when capturing en
// passant, given the stored en-passant file.
func epCaptureSquare(turn Color, file File) Square {
	if turn == White {
		return NewSquare(file, Rank6)
	}
	return NewSquare(file, Rank3)
}

// pawnOrigin returns the square a pawn of the given color pushed from to land on to,
// where delta is 8 (single push) or 16 (double push).
func pawnOrigin(turn Color, to Square, delta int) Square {
	if turn == White {
		return Square(int(to) - delta)
	}
	return Square(int(to) + delta)
}

// PawnHomeRankPushed returns the rank a pawn occupies immediately after a single push
// from its home rank -- Rank3 for White, Rank6 for Black -- used to find double-push
// candidates among already-computed single pushes.
func PawnHomeRankPushed(c Color) Bitboard {
	if c == White {
		return BitRank(Rank3)
	}
	return BitRank(Rank6)
}

// pawnCaptureOrigins returns the squares among `pawns` that attack `to` diagonally.
func pawnCaptureOrigins(turn Color, to Square, pawns Bitboard) []Square {
	var ret []Square
	candidates := PawnAttackboard(turn.Opponent(), BitMask(to)) & pawns
	for candidates != 0 {
		sq, rest := candidates.PopLSB()
		candidates = rest
		ret = append(ret, sq)
	}
	return ret
}

func appendPawnMove(moves []Move, from, to Square, capture Piece, promoRank Bitboard) []Move {
	if promoRank.IsSet(to) {
		for _, promo := range promotionPieces {
			moves = append(moves, Move{From: from, To: to, Piece: Pawn, Capture: capture, Promotion: promo, Type: Promotion})
		}
		return moves
	}
	return append(moves, Move{From: from, To: to, Piece: Pawn, Capture: capture, Type: Normal})
}

func appendPawnCapture(moves []Move, from, to Square, capture Piece, promoRank Bitboard) []Move {
	return appendPawnMove(moves, from, to, capture, promoRank)
}
