package search

import (
	"container/heap"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
)

// priority buckets, high to low, per spec.md §4.7's move-ordering list: TT move,
// winning/equal captures by SEE, promotions, killers, counter-move, history
// (butterfly), losing captures last. A losing capture that crosses into the
// enemy king zone is promoted above quiet history (tactical sacrifice bonus).
const (
	priorityTT         int32 = 1 << 30
	priorityGoodCap    int32 = 1 << 26
	priorityPromotion  int32 = 1 << 24
	priorityKiller     int32 = 1 << 22
	priorityCounter    int32 = 1 << 21
	priorityKingZoneCap int32 = 1 << 20
	priorityBadCap     int32 = -(1 << 26)
)

// orderingContext carries everything needed to score a move for ordering, beyond
// the move itself.
type orderingContext struct {
	pos      *board.Position
	ts       *threadState
	ply      int
	ttMove   board.Move
	prevMove board.Move
}

// MoveList is a move priority queue for move ordering, mirroring the teacher's
// search package's container/heap-based MoveList.
type MoveList struct {
	h moveHeap
}

// NewMoveList scores and heapifies moves against oc.
func NewMoveList(moves []board.Move, oc orderingContext) *MoveList {
	h := make(moveHeap, len(moves))
	for i, m := range moves {
		h[i] = elm{m: m, val: scoreMove(m, oc)}
	}
	heap.Init(&h)
	return &MoveList{h: h}
}

// Next returns the next highest-priority move, or false when exhausted.
func (ml *MoveList) Next() (board.Move, bool) {
	if ml.h.Len() == 0 {
		return board.Move{}, false
	}
	e := heap.Pop(&ml.h).(elm)
	return e.m, true
}

func (ml *MoveList) Len() int { return ml.h.Len() }

type elm struct {
	m   board.Move
	val int32
}

type moveHeap []elm

func (h moveHeap) Len() int            { return len(h) }
func (h moveHeap) Less(i, j int) bool  { return h[i].val > h[j].val }
func (h moveHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *moveHeap) Push(x interface{}) { *h = append(*h, x.(elm)) }
func (h *moveHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

func scoreMove(m board.Move, oc orderingContext) int32 {
	if oc.ttMove != (board.Move{}) && m.Equals(oc.ttMove) {
		return priorityTT
	}

	if m.IsCapture() {
		see := eval.SEE(oc.pos, m)
		if see >= 0 {
			return priorityGoodCap + int32(see)
		}
		if isInKingZone(oc.pos, m.To, oc.pos.Turn().Opponent()) {
			return priorityKingZoneCap + int32(see)
		}
		return priorityBadCap + int32(see)
	}

	if m.Promotion != board.NoPiece {
		return priorityPromotion + int32(eval.NominalValue(m.Promotion))
	}

	if oc.ts != nil {
		if oc.ts.isKiller(oc.ply, m) {
			return priorityKiller
		}
		if !oc.prevMove.IsZero() && oc.ts.counterMove(oc.prevMove).Equals(m) {
			return priorityCounter
		}
		return oc.ts.historyScore(m)
	}
	return 0
}

// isInKingZone reports whether sq lies within the 3x3 neighborhood of by's king,
// used to identify a tactical sacrifice that cracks open the enemy king despite
// losing material by SEE, per spec.md §4.7.
func isInKingZone(pos *board.Position, sq board.Square, by board.Color) bool {
	king := pos.King(by)
	if king == board.NoSquare {
		return false
	}
	df := int(sq.File()) - int(king.File())
	dr := int(sq.Rank()) - int(king.Rank())
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	return df <= 1 && dr <= 1
}
