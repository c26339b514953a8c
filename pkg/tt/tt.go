// Package tt implements the engine's shared transposition table: a fixed-size,
// lockless, depth-preferred, index-by-modulo hash table, per spec.md §4.6/§5.
// Every entry is two 64-bit atomic words (key, packed data) updated with
// release/acquire ordering, so a concurrent reader observes either the old pair
// or the new pair -- a torn read manifests as a key mismatch and is treated as a
// miss, never as a value decoded from the wrong key.
package tt

import (
	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"go.uber.org/atomic"
)

// Bound encodes the relationship between a stored score and the true value, per
// spec.md §4.6.
type Bound uint8

const (
	Exact Bound = iota
	Lower
	Upper
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	default:
		return "?"
	}
}

// entry is one slot: a key atom and a data atom, per spec.md §3/§4.6. Keeping
// both as plain uint64 atomics (rather than a single struct behind a mutex) is
// what makes probes and stores lockless.
type entry struct {
	key  atomic.Uint64
	data atomic.Uint64
}

// packed data layout (spec.md §3): score:32, depth:8, bound:2, move:16 -- 58 of 64
// bits used.
const (
	shiftScore = 32
	shiftDepth = 24
	shiftBound = 22
	shiftMove  = 0

	maskDepth = 0xff
	maskBound = 0x3
	maskMove  = 0xffff
)

func packMove(m board.Move) uint64 {
	if m.IsZero() {
		return maskMove // sentinel: no move
	}
	return uint64(m.From) | uint64(m.To)<<6 | uint64(m.Promotion)<<12
}

func unpackMove(v uint64) board.Move {
	if v&maskMove == maskMove {
		return board.Move{}
	}
	from := board.Square(v & 0x3f)
	to := board.Square((v >> 6) & 0x3f)
	promo := board.Piece((v >> 12) & 0xf)
	return board.Move{From: from, To: to, Promotion: promo}
}

func pack(score eval.Score, depth int, bound Bound, move board.Move) uint64 {
	d := uint64(depth) & maskDepth
	return uint64(uint32(score))<<shiftScore | d<<shiftDepth | uint64(bound)<<shiftBound | packMove(move)
}

func unpack(data uint64) (score eval.Score, depth int, bound Bound, move board.Move) {
	score = eval.Score(int32(uint32(data >> shiftScore)))
	depth = int((data >> shiftDepth) & maskDepth)
	bound = Bound((data >> shiftBound) & maskBound)
	move = unpackMove(data)
	return
}

// Table is a fixed-size lockless transposition table, sized to a megabyte budget
// and indexed by fingerprint modulo capacity (a power of two, so modulo is a mask),
// per spec.md §4.6.
type Table struct {
	entries []entry
	mask    uint64
}

// entrySize is the in-memory footprint of one slot: two uint64 atoms.
const entrySize = 16

// New allocates a table sized to fit within sizeBytes, rounding capacity down to
// the nearest power of two. A sizeBytes too small for even one entry still
// yields a one-entry table. The error result is always nil here; it exists so
// that a caller can keep an existing table if an allocation fails.
func New(sizeBytes uint64) (*Table, error) {
	n := sizeBytes / entrySize
	if n == 0 {
		n = 1
	}
	capacity := uint64(1)
	for capacity*2 <= n {
		capacity *= 2
	}
	return &Table{entries: make([]entry, capacity), mask: capacity - 1}, nil
}

// Probe looks up hash. ok is false on a miss, including a torn concurrent read
// (the key atom won't match).
func (t *Table) Probe(hash board.Hash) (score eval.Score, depth int, bound Bound, move board.Move, ok bool) {
	idx := uint64(hash) & t.mask
	e := &t.entries[idx]

	key := e.key.Load() // acquire
	if key != uint64(hash) {
		return 0, 0, 0, board.Move{}, false
	}
	data := e.data.Load() // relaxed w.r.t. key, but Go atomics are sequentially consistent
	if data == 0 {
		// Never-written or cleared slot: a stored entry always has non-zero move bits.
		return 0, 0, 0, board.Move{}, false
	}
	score, depth, bound, move = unpack(data)
	return score, depth, bound, move, true
}

// Store writes an entry, depth-preferred: an empty slot, a slot holding a
// different key, or an incoming depth >= the stored depth is always overwritten,
// per spec.md §4.6. Publication order is data first, then key (release), exactly
// matching spec.md's torn-read tolerance: a reader that observes a fresh key
// always also observes fresh data, while a reader racing the write observes
// either the fully-old or fully-new pair.
func (t *Table) Store(hash board.Hash, score eval.Score, depth int, bound Bound, move board.Move) {
	idx := uint64(hash) & t.mask
	e := &t.entries[idx]

	if key := e.key.Load(); key == uint64(hash) {
		if _, existingDepth, _, _, ok := t.Probe(hash); ok && existingDepth > depth {
			return // deeper entry already present for this key
		}
	}

	data := pack(score, depth, bound, move)
	e.data.Store(data)  // relaxed publish of data
	e.key.Store(uint64(hash)) // release publish of key
}

// Clear resets every slot, used by UCI ucinewgame per spec.md §6.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i].key.Store(0)
		t.entries[i].data.Store(0)
	}
}

// SizeBytes returns the table's allocated footprint.
func (t *Table) SizeBytes() uint64 {
	return uint64(len(t.entries)) * entrySize
}

// Len returns the number of slots (always a power of two).
func (t *Table) Len() int {
	return len(t.entries)
}

// HashFull estimates utilization in permille, sampling the first 1000 slots --
// the conventional UCI "hashfull" approximation.
func (t *Table) HashFull() int {
	n := 1000
	if n > len(t.entries) {
		n = len(t.entries)
	}
	used := 0
	for i := 0; i < n; i++ {
		if t.entries[i].key.Load() != 0 {
			used++
		}
	}
	if len(t.entries) == 0 {
		return 0
	}
	return used * 1000 / n
}
