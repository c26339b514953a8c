package search

import "github.com/corvidchess/corvid/pkg/board"

// threadState holds the per-thread search state of spec.md §3: a killer-move
// table indexed by ply, butterfly history indexed by [from][to], a counter-move
// table indexed by [from][to], and the repetition history. None of it is shared
// across workers -- each Lazy SMP worker owns its own, per spec.md §5.
type threadState struct {
	killers [MaxPly][2]board.Move
	history [64][64]int32
	counter [64][64]board.Move

	// repetition is the ordered sequence of position fingerprints played from the
	// root, with the current root appended, per spec.md §3. A search detects
	// repetition by scanning for a duplicate of the current fingerprint.
	repetition []board.Hash

	nodes uint64
}

func newThreadState(root board.Hash, rootHistory []board.Hash) *threadState {
	ts := &threadState{}
	ts.repetition = append(ts.repetition, rootHistory...)
	ts.repetition = append(ts.repetition, root)
	return ts
}

// pushRepetition records a newly reached position's fingerprint.
func (ts *threadState) pushRepetition(h board.Hash) {
	ts.repetition = append(ts.repetition, h)
}

// popRepetition removes the most recently pushed fingerprint, mirroring unmake.
func (ts *threadState) popRepetition() {
	ts.repetition = ts.repetition[:len(ts.repetition)-1]
}

// isRepetition reports whether h already occurs earlier in the recorded history
// (excluding the just-pushed current entry), per spec.md §3/§4.7.
func (ts *threadState) isRepetition(h board.Hash) bool {
	for i := 0; i < len(ts.repetition)-1; i++ {
		if ts.repetition[i] == h {
			return true
		}
	}
	return false
}

// recordKiller rotates a new killer move into the ply's two-slot table, per
// spec.md §4.7: "push it into the killer slots (rotate)".
func (ts *threadState) recordKiller(ply int, m board.Move) {
	if ply >= MaxPly {
		return
	}
	if ts.killers[ply][0].Equals(m) {
		return
	}
	ts.killers[ply][1] = ts.killers[ply][0]
	ts.killers[ply][0] = m
}

func (ts *threadState) isKiller(ply int, m board.Move) bool {
	if ply >= MaxPly {
		return false
	}
	return ts.killers[ply][0].Equals(m) || ts.killers[ply][1].Equals(m)
}

// bumpHistory increases a quiet move's history score by depth^2, clamped to avoid
// overflow dominating future comparisons, per spec.md §4.7.
func (ts *threadState) bumpHistory(m board.Move, depth int) {
	bonus := int32(depth * depth)
	v := ts.history[m.From][m.To] + bonus
	const cap = 1 << 20
	if v > cap {
		v = cap
	}
	ts.history[m.From][m.To] = v
}

func (ts *threadState) historyScore(m board.Move) int32 {
	return ts.history[m.From][m.To]
}

func (ts *threadState) recordCounter(prev, m board.Move) {
	if prev.IsZero() {
		return
	}
	ts.counter[prev.From][prev.To] = m
}

func (ts *threadState) counterMove(prev board.Move) board.Move {
	if prev.IsZero() {
		return board.Move{}
	}
	return ts.counter[prev.From][prev.To]
}
