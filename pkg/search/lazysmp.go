package search

import (
	"sync"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tt"
	"go.uber.org/atomic"
)

// ancillaryDepthBonus is how much deeper an ancillary Lazy SMP worker searches
// past the main worker's requested depth, per spec.md §5: a different effective
// depth per thread is what makes the shared-TT scheme useful without any split
// or coordination between threads.
const ancillaryDepthBonus = 4

// Orchestrator runs a Lazy SMP search: several Worker goroutines searching the
// same position independently, sharing one transposition table and one stop
// flag, per spec.md §5. There is no work splitting and no synchronization
// barrier between threads -- the only coordination is the shared TT and the
// shared stop flag.
type Orchestrator struct {
	root      *board.Position
	history   []board.Hash
	eval      eval.Evaluator
	tap       eval.Tapered
	noise     eval.Random
	threads   int
	shared    *Shared
}

// NewOrchestrator builds an orchestrator over root (not mutated; each worker
// gets its own copy), sized to run threads Lazy SMP workers sharing tbl (nil
// disables the transposition table).
func NewOrchestrator(root *board.Position, history []board.Hash, ev eval.Evaluator, tap eval.Tapered, noise eval.Random, tbl *tt.Table, threads int) *Orchestrator {
	if threads < 1 {
		threads = 1
	}
	return &Orchestrator{
		root:    root,
		history: history,
		eval:    ev,
		tap:     tap,
		noise:   noise,
		threads: threads,
		shared: &Shared{
			TT:    tbl,
			Stop:  atomic.NewBool(false),
			Nodes: atomic.NewUint64(0),
		},
	}
}

// Stop signals every worker to halt at its next node-count check.
func (o *Orchestrator) Stop() {
	o.shared.Stop.Store(true)
}

// Search runs maxDepth plies of iterative deepening across o.threads workers,
// reporting the main worker's progress via report, per spec.md §5/§6. It
// blocks until every worker returns (either by exhausting maxDepth or by Stop
// being called / the deadline elapsing). deadline is zero for no time limit.
func (o *Orchestrator) Search(maxDepth int, deadline time.Time, report Progress) PV {
	o.shared.Deadline = deadline

	var wg sync.WaitGroup
	results := make([]PV, o.threads)

	for i := 0; i < o.threads; i++ {
		i := i
		isMain := i == 0
		pos := clonePosition(o.root)
		w := NewWorker(pos, o.history, o.eval, o.tap, o.noise.Derive(i), o.shared, isMain)

		depth := maxDepth
		if !isMain {
			depth += ancillaryDepthBonus
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			var r Progress
			if isMain {
				r = report
			}
			results[i] = w.Iterate(depth, r)
		}()
	}

	wg.Wait()
	return results[0]
}

// clonePosition deep-copies pos so each worker mutates its own board via
// make/unmake without racing the others, per spec.md §5.
func clonePosition(pos *board.Position) *board.Position {
	cp := *pos
	return &cp
}
