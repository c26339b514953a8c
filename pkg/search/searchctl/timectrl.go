package searchctl

import (
	"fmt"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
)

// TimeControl represents the UCI `go` time parameters for both sides.
type TimeControl struct {
	White, Black       time.Duration
	WhiteInc, BlackInc time.Duration
	// MoveTime, if non-zero, overrides the formula below with a fixed per-move
	// budget (UCI `movetime`).
	MoveTime time.Duration
}

// minTimeBudget is the floor below which Allocate never goes, per spec.md §4.7:
// "floored at 10ms" so a near-flagged clock still gets a legal move out.
const minTimeBudget = 10 * time.Millisecond

// timeSafetyMargin is subtracted from the remaining clock before the per-move
// share is computed, per spec.md §4.7, to leave headroom for UCI/GUI overhead.
const timeSafetyMargin = 50 * time.Millisecond

// Allocate returns the time budget for one move by the given color, per
// spec.md §4.7's explicit formula: min(my_time-50ms, my_time/20+my_inc/2),
// floored at 10ms. MoveTime, if set, is used directly instead.
func (t TimeControl) Allocate(c board.Color) time.Duration {
	if t.MoveTime > 0 {
		return t.MoveTime
	}

	myTime, myInc := t.White, t.WhiteInc
	if c == board.Black {
		myTime, myInc = t.Black, t.BlackInc
	}

	budget := myTime - timeSafetyMargin
	if share := myTime/20 + myInc/2; share < budget {
		budget = share
	}
	if budget < minTimeBudget {
		budget = minTimeBudget
	}
	return budget
}

func (t TimeControl) String() string {
	if t.MoveTime > 0 {
		return fmt.Sprintf("movetime=%v", t.MoveTime)
	}
	return fmt.Sprintf("%v(+%v)<>%v(+%v)", t.White, t.WhiteInc, t.Black, t.BlackInc)
}
