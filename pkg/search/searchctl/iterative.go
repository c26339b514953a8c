package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// MaxDepth bounds iterative deepening when Options carries no depth limit, per
// spec.md §6: a `go` without `depth` runs on the clock (or until stopped), not
// forever.
const MaxDepth = 64

// Iterative is the Launcher that drives the Lazy SMP orchestrator under
// iterative deepening and UCI-style depth/time controls.
type Iterative struct{}

// Launch implements Launcher.
func (i *Iterative) Launch(ctx context.Context, pos *board.Position, history []board.Hash, tbl *tt.Table, ev eval.Evaluator, tap eval.Tapered, noise eval.Random, threads int, opt Options) (Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
		done: make(chan struct{}),
	}
	go h.process(ctx, pos, history, tbl, ev, tap, noise, threads, opt, out)
	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser
	done       chan struct{}

	mu   sync.Mutex
	orch *search.Orchestrator
	pv   search.PV
}

func (h *handle) process(ctx context.Context, pos *board.Position, history []board.Hash, tbl *tt.Table, ev eval.Evaluator, tap eval.Tapered, noise eval.Random, threads int, opt Options, out chan search.PV) {
	defer close(h.done)
	defer close(out)
	defer h.init.Close()

	maxDepth := MaxDepth
	if d, ok := opt.DepthLimit.V(); ok && d > 0 {
		maxDepth = int(d)
	}

	var deadline time.Time
	if tc, ok := opt.TimeControl.V(); ok {
		deadline = time.Now().Add(tc.Allocate(pos.Turn()))
	}

	orch := search.NewOrchestrator(pos, history, ev, tap, noise, tbl, threads)

	h.mu.Lock()
	h.orch = orch
	h.mu.Unlock()
	h.init.Close()

	if h.quit.IsClosed() {
		// Halted before the first iteration even started.
		return
	}

	pv := orch.Search(maxDepth, deadline, func(p search.PV) {
		h.mu.Lock()
		h.pv = p
		h.mu.Unlock()

		select {
		case out <- p:
		default:
			select {
			case <-out:
			default:
			}
			out <- p
		}
	})

	h.mu.Lock()
	h.pv = pv
	h.mu.Unlock()

	logw.Debugf(ctx, "Search completed: %v", pv)
}

// Halt implements Handle. It blocks until the search goroutine has fully
// unwound, so the caller can safely mutate the position it handed to Launch
// as soon as Halt returns.
func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	orch := h.orch
	h.mu.Unlock()
	if orch != nil {
		orch.Stop()
	}

	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}
