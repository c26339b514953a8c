package board

import (
	"math/bits"
	"math/rand"
	"strings"
)

// Bitboard is a bit-wise representation of the chess board. Each bit represents the
// occupancy of one square (bit 0 = A1, bit 63 = H8). Relies on CPU support for
// popcount and bit-scan, as exposed by math/bits.
type Bitboard uint64

const EmptyBitboard Bitboard = 0

func (b Bitboard) IsSet(sq Square) bool {
	return b&BitMask(sq) != 0
}

// PopCount returns the population count of the bitboard, i.e. the number of 1 bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LastPopSquare returns the index of the least-significant 1 bit. Returns NoSquare if zero.
func (b Bitboard) LastPopSquare() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB returns the least-significant square and the bitboard with that bit cleared.
func (b Bitboard) PopLSB() (Square, Bitboard) {
	sq := b.LastPopSquare()
	return sq, b &^ BitMask(sq)
}

func (b Bitboard) String() string {
	var sb strings.Builder
	for r := int(Rank8); r >= int(Rank1); r-- {
		for f := ZeroFile; f < NumFiles; f++ {
			if b.IsSet(NewSquare(f, Rank(r))) {
				sb.WriteRune('X')
			} else {
				sb.WriteRune('-')
			}
		}
		if r > int(Rank1) {
			sb.WriteRune('/')
		}
	}
	return sb.String()
}

// BitMask returns a bitboard with just the given square populated.
func BitMask(sq Square) Bitboard {
	return Bitboard(1) << sq
}

// BitRank returns a bitboard for the given rank.
func BitRank(r Rank) Bitboard {
	return Bitboard(0xff) << (Square(r) << 3)
}

// BitFile returns a bitboard for the given file.
func BitFile(f File) Bitboard {
	return Bitboard(0x0101010101010101) << Square(f)
}

var (
	maskFileA = BitFile(FileA)
	maskFileH = BitFile(FileH)
	maskRank1 = BitRank(Rank1)
	maskRank8 = BitRank(Rank8)
)

// PawnAttackboard returns all squares a pawn of the given color on any of the given
// squares attacks (diagonal captures only, not pushes).
func PawnAttackboard(c Color, pawns Bitboard) Bitboard {
	if c == White {
		return ((pawns &^ maskFileA) << 7) | ((pawns &^ maskFileH) << 9)
	}
	return ((pawns &^ maskFileH) >> 7) | ((pawns &^ maskFileA) >> 9)
}

// PawnPushboard returns all potential single-step pushes for the given color.
func PawnPushboard(all Bitboard, c Color, pawns Bitboard) Bitboard {
	if c == White {
		return (pawns << 8) &^ all
	}
	return (pawns >> 8) &^ all
}

// PawnPromotionRank returns the mask of the promotion rank for the given color.
func PawnPromotionRank(c Color) Bitboard {
	if c == White {
		return maskRank8
	}
	return maskRank1
}

// PawnJumpRank returns the mask of the target rank for a pawn double-step for the
// given color, i.e. Rank4 for White or Rank5 for Black.
func PawnJumpRank(c Color) Bitboard {
	if c == White {
		return BitRank(Rank4)
	}
	return BitRank(Rank5)
}

// PawnHomeRank returns the starting rank of pawns for the given color.
func PawnHomeRank(c Color) Bitboard {
	if c == White {
		return BitRank(Rank2)
	}
	return BitRank(Rank7)
}

// Attackboard returns all potential moves/attacks for a non-pawn piece at the given
// square given the full board occupancy.
func Attackboard(occ Bitboard, sq Square, piece Piece) Bitboard {
	switch piece {
	case King:
		return KingAttackboard(sq)
	case Queen:
		return RookAttackboard(occ, sq) | BishopAttackboard(occ, sq)
	case Rook:
		return RookAttackboard(occ, sq)
	case Bishop:
		return BishopAttackboard(occ, sq)
	case Knight:
		return KnightAttackboard(sq)
	default:
		panic("invalid piece")
	}
}

func KingAttackboard(sq Square) Bitboard {
	return kingAttacks[sq]
}

func KnightAttackboard(sq Square) Bitboard {
	return knightAttacks[sq]
}

// RookAttackboard returns the attack set of a rook on sq given full-board occupancy occ,
// resolved via magic multiplication: table[sq][((occ&mask[sq])*magic[sq])>>shift[sq]].
func RookAttackboard(occ Bitboard, sq Square) Bitboard {
	m := &rookMagics[sq]
	idx := ((occ & m.mask) * m.magic) >> m.shift
	return m.table[idx]
}

// BishopAttackboard returns the attack set of a bishop on sq given full-board occupancy.
func BishopAttackboard(occ Bitboard, sq Square) Bitboard {
	m := &bishopMagics[sq]
	idx := ((occ & m.mask) * m.magic) >> m.shift
	return m.table[idx]
}

var (
	kingAttacks, knightAttacks [NumSquares]Bitboard
	rookMagics, bishopMagics   [NumSquares]magicEntry
)

// magicEntry holds the precomputed relevance mask, magic multiplier, shift amount
// and flat attack table for one square's sliding piece, per spec.md §4.1.
type magicEntry struct {
	mask  Bitboard
	magic Bitboard
	shift uint
	table []Bitboard
}

var rookDeltas = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var bishopDeltas = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func init() {
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		kingAttacks[sq] = stepAttacks(sq, [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}})
		knightAttacks[sq] = stepAttacks(sq, [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}})
	}

	seed := rand.New(rand.NewSource(2026))
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		rookMagics[sq] = newMagic(seed, sq, rookDeltas, true)
		bishopMagics[sq] = newMagic(seed, sq, bishopDeltas, false)
	}
}

func stepAttacks(sq Square, deltas [8][2]int) Bitboard {
	var ret Bitboard
	f, r := int(sq.File()), int(sq.Rank())
	for _, d := range deltas {
		nf, nr := f+d[0], r+d[1]
		if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
			ret |= BitMask(NewSquare(File(nf), Rank(nr)))
		}
	}
	return ret
}

// slidingRay rays out from sq in the given direction, stopping (inclusively) at the
// first blocker in occ. edgeExclusive controls whether the relevance mask excludes the
// board edge (required for the magic relevance mask, not for the reference attack set).
func slidingRay(sq Square, delta [2]int, occ Bitboard, edgeExclusive bool) Bitboard {
	var ret Bitboard
	f, r := int(sq.File()), int(sq.Rank())
	for {
		f += delta[0]
		r += delta[1]
		if f < 0 || f > 7 || r < 0 || r > 7 {
			break
		}
		if edgeExclusive {
			// Relevance masks exclude the outer edge in the ray's own direction, since a
			// blocker there contributes nothing beyond what the edge already bounds.
			atEdge := (delta[0] == 1 && f == 7) || (delta[0] == -1 && f == 0) ||
				(delta[1] == 1 && r == 7) || (delta[1] == -1 && r == 0)
			if atEdge {
				break
			}
		}
		target := NewSquare(File(f), Rank(r))
		ret |= BitMask(target)
		if occ.IsSet(target) {
			break
		}
	}
	return ret
}

func relevanceMask(sq Square, deltas [4][2]int) Bitboard {
	var ret Bitboard
	for _, d := range deltas {
		ret |= slidingRay(sq, d, EmptyBitboard, true)
	}
	return ret
}

func referenceAttacks(sq Square, deltas [4][2]int, occ Bitboard) Bitboard {
	var ret Bitboard
	for _, d := range deltas {
		ret |= slidingRay(sq, d, occ, false)
	}
	return ret
}

// subsets enumerates every occupancy subset of mask (the Carry-Rippler trick).
func subsets(mask Bitboard) []Bitboard {
	var ret []Bitboard
	sub := EmptyBitboard
	for {
		ret = append(ret, sub)
		sub = (sub - mask) & mask
		if sub == 0 {
			break
		}
	}
	return ret
}

// newMagic finds a collision-free magic multiplier for sq by trial sparse-random
// multiplication, per spec.md §4.1: "searches for magic multipliers with trial sparse
// random multiplications until a collision-free mapping is found".
func newMagic(rnd *rand.Rand, sq Square, deltas [4][2]int, rook bool) magicEntry {
	mask := relevanceMask(sq, deltas)
	bits := mask.PopCount()
	shift := uint(64 - bits)

	occs := subsets(mask)
	refs := make([]Bitboard, len(occs))
	for i, occ := range occs {
		refs[i] = referenceAttacks(sq, deltas, occ)
	}

	table := make([]Bitboard, 1<<uint(bits))
	for attempt := 0; ; attempt++ {
		magic := sparseRandom(rnd)
		if ((mask * magic) >> 56).PopCount() < 6 {
			continue // reject multipliers unlikely to spread high bits well
		}

		for i := range table {
			table[i] = 0
		}

		ok := true
		for i, occ := range occs {
			idx := (occ * magic) >> shift
			if table[idx] != 0 && table[idx] != refs[i] {
				ok = false
				break
			}
			table[idx] = refs[i]
		}
		if ok {
			return magicEntry{mask: mask, magic: magic, shift: shift, table: table}
		}
	}
}

// sparseRandom returns a pseudo-random 64-bit value with relatively few set bits,
// which empirically yields magic multipliers faster than dense random values.
func sparseRandom(rnd *rand.Rand) Bitboard {
	return Bitboard(rnd.Uint64() & rnd.Uint64() & rnd.Uint64())
}
