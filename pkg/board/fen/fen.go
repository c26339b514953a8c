// Package fen reads and writes positions in Forsyth-Edwards Notation, per
// spec.md §4.2: "loadFromFEN(str) parses the four leading fields of a FEN
// (placement, side, castling, en-passant)". Malformed input is handled
// best-effort per spec.md §7: missing fields default rather than aborting.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/corvidchess/corvid/pkg/board"
)

// Initial is the standard starting position.
const Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Decode parses a FEN string into a Position plus the halfmove clock and fullmove
// number (trailing fields 5 and 6, defaulted to 0 and 1 if absent -- spec.md §7
// says the engine never aborts on malformed FEN). The en-passant field is
// normalized per spec.md §4.2: kept only if a pawn of the side to move can
// actually answer it.
func Decode(s string) (*board.Position, int, int, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) == 0 {
		return nil, 0, 0, fmt.Errorf("invalid FEN (missing piece placement): %q", s)
	}

	placements, err := decodePlacement(parts[0])
	if err != nil {
		return nil, 0, 0, err
	}

	turn := board.White
	if len(parts) > 1 {
		switch strings.ToLower(parts[1]) {
		case "b":
			turn = board.Black
		case "w", "":
			turn = board.White
		default:
			return nil, 0, 0, fmt.Errorf("invalid side to move in FEN: %q", s)
		}
	}

	var castling board.Castling
	if len(parts) > 2 {
		castling = decodeCastling(parts[2])
	}

	var epFile board.Square
	var epSet bool
	if len(parts) > 3 && parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, 0, 0, fmt.Errorf("invalid en-passant field in FEN: %q", s)
		}
		epFile = board.Square(sq.File())
		epSet = true
	}

	halfmove := 0
	if len(parts) > 4 {
		if n, err := strconv.Atoi(parts[4]); err == nil && n >= 0 {
			halfmove = n
		}
	}
	fullmove := 1
	if len(parts) > 5 {
		if n, err := strconv.Atoi(parts[5]); err == nil && n >= 1 {
			fullmove = n
		}
	}

	pos, err := board.NewPosition(placements, turn, castling, board.Square(epFile), epSet)
	if err != nil {
		return nil, 0, 0, err
	}

	// Normalize: the raw FEN en-passant target may list a square even though no
	// enemy pawn can legally answer it (some GUIs always print it after a double
	// push). Re-derive whether it is actually capturable from the placed pawns so
	// the fingerprint matches a position reached by playing the same double push
	// -- spec.md §4.2, §9.
	if epSet {
		normalizeEnPassant(pos, turn, epFile)
	}

	return pos, halfmove, fullmove, nil
}

// normalizeEnPassant clears the position's en-passant state unless a pawn of the
// side to move actually threatens the capture, per spec.md §3/§4.2/§9.
func normalizeEnPassant(pos *board.Position, turn board.Color, epFile board.Square) {
	rank := board.Rank6
	if turn == board.Black {
		rank = board.Rank3
	}
	target := board.NewSquare(board.File(epFile), rank)
	if board.PawnAttackboard(turn.Opponent(), board.BitMask(target))&pos.Piece(turn, board.Pawn) == 0 {
		pos.ClearEnPassant()
	}
}

// Encode renders a position back to FEN, given the halfmove clock and fullmove
// number that the Position type itself does not track.
func Encode(pos *board.Position, halfmove, fullmove int) string {
	var sb strings.Builder
	for r := int(board.Rank8); r >= int(board.Rank1); r-- {
		empty := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			sq := board.NewSquare(f, board.Rank(r))
			c, piece, ok := pos.At(sq)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(printPiece(c, piece))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > int(board.Rank1) {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(pos.Turn().String())
	sb.WriteByte(' ')
	sb.WriteString(pos.Castling().String())
	sb.WriteByte(' ')

	if ep, ok := pos.EnPassant(); ok {
		rank := board.Rank6
		if pos.Turn() == board.Black {
			rank = board.Rank3
		}
		sb.WriteString(board.NewSquare(ep.File(), rank).String())
	} else {
		sb.WriteByte('-')
	}

	fmt.Fprintf(&sb, " %d %d", halfmove, fullmove)
	return sb.String()
}

func printPiece(c board.Color, p board.Piece) string {
	if c == board.White {
		return strings.ToUpper(p.String())
	}
	return p.String()
}

func decodePlacement(field string) ([]board.Placement, error) {
	var placements []board.Placement

	rank := board.Rank8
	file := board.ZeroFile
	for _, r := range field {
		switch {
		case r == '/':
			rank--
			file = board.ZeroFile
		case unicode.IsDigit(r):
			file += board.File(r - '0')
		case unicode.IsLetter(r):
			c, piece, ok := parsePiece(r)
			if !ok {
				return nil, fmt.Errorf("invalid piece %q in FEN placement %q", r, field)
			}
			placements = append(placements, board.Placement{Square: board.NewSquare(file, rank), Color: c, Piece: piece})
			file++
		default:
			return nil, fmt.Errorf("invalid character %q in FEN placement %q", r, field)
		}
	}
	return placements, nil
}

func parsePiece(r rune) (board.Color, board.Piece, bool) {
	c := board.White
	if unicode.IsLower(r) {
		c = board.Black
	}
	p, ok := board.ParsePiece(r)
	return c, p, ok
}

func decodeCastling(field string) board.Castling {
	if field == "-" {
		return 0
	}
	var c board.Castling
	for _, r := range field {
		switch r {
		case 'K':
			c |= board.WhiteKingSideCastle
		case 'Q':
			c |= board.WhiteQueenSideCastle
		case 'k':
			c |= board.BlackKingSideCastle
		case 'q':
			c |= board.BlackQueenSideCastle
		}
	}
	return c
}
