// Package searchctl drives iterative-deepening Lazy SMP searches under UCI-style
// time and depth controls, per spec.md §4.7/§6.
package searchctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Options hold dynamic per-search options, set by UCI `go` parameters.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, limits the search to the given time parameters.
	TimeControl lang.Optional[TimeControl]
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher manages searches over a shared transposition table.
type Launcher interface {
	// Launch starts a new search from pos (the caller's live position, which
	// the launcher only reads; each worker searches its own copy) and returns a
	// handle plus a channel of progressively deeper PVs. The channel closes when
	// the search is exhausted or halted.
	Launch(ctx context.Context, pos *board.Position, history []board.Hash, tbl *tt.Table, ev eval.Evaluator, tap eval.Tapered, noise eval.Random, threads int, opt Options) (Handle, <-chan search.PV)
}

// Handle lets the engine stop a running search and retrieve its last PV.
type Handle interface {
	// Halt stops the search, if running, and returns its most recent PV. Idempotent.
	Halt() search.PV
}
