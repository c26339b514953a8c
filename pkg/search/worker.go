package search

import (
	"errors"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/tt"
	"go.uber.org/atomic"
)

// ErrHalted indicates the search observed the shared stop flag and unwound
// without a usable result, per spec.md §4.7's "Failure semantics": "On stop,
// negamax returns immediately with a sentinel the driver treats as 'do not
// update best move'."
var ErrHalted = errors.New("search halted")

// checkInterval is how often (in nodes) a worker polls the shared stop flag and
// deadline, per spec.md §4.7/§5: "polls a shared stop flag every ~2048 nodes".
const checkInterval = 2048

// Shared is the state every Lazy SMP worker reads or atomically updates in
// common, per spec.md §5: the transposition table, the stop flag, and the
// global node counter. No locks guard any of it.
type Shared struct {
	TT      *tt.Table // nil disables the transposition table (UseTT off)
	Stop    *atomic.Bool
	Nodes   *atomic.Uint64
	Deadline time.Time // zero means no deadline
}

func (s *Shared) expired() bool {
	return !s.Deadline.IsZero() && time.Now().After(s.Deadline)
}

// Worker runs a single Lazy-SMP search thread, per spec.md §3/§5: it owns a
// private position (a deep copy, mutated in place via make/unmake) and private
// search state (killers, history, counter-moves, repetition stack); it shares
// only the Shared fields above.
type Worker struct {
	pos   *board.Position
	ts    *threadState
	eval  eval.Evaluator
	tap   eval.Tapered // used for repetition contempt; zero value disables it
	noise eval.Random

	shared *Shared
	isMain bool

	localNodes uint64
	halted     bool
}

// NewWorker constructs a worker over a private position copy. rootHistory is the
// repetition history accumulated before this search began (moves played in the
// game so far), per spec.md §3.
func NewWorker(pos *board.Position, rootHistory []board.Hash, ev eval.Evaluator, tap eval.Tapered, noise eval.Random, shared *Shared, isMain bool) *Worker {
	return &Worker{
		pos:    pos,
		ts:     newThreadState(pos.Hash(), rootHistory),
		eval:   ev,
		tap:    tap,
		noise:  noise,
		shared: shared,
		isMain: isMain,
	}
}

// checkStop polls the shared stop flag and deadline every checkInterval nodes,
// per spec.md §5. It sets the stop flag itself on deadline expiry so every
// worker observes it promptly, not just the one that noticed.
func (w *Worker) checkStop() bool {
	if w.halted {
		return true
	}
	w.localNodes++
	if w.localNodes%checkInterval != 0 {
		return false
	}
	if w.shared.Stop.Load() {
		w.halted = true
		return true
	}
	if w.shared.expired() {
		w.shared.Stop.Store(true)
		w.halted = true
		return true
	}
	return false
}

func (w *Worker) countNode() {
	w.shared.Nodes.Inc()
}

// rootSearch runs one full iterative-deepening iteration to the given depth from
// the current position, with the given aspiration window, per spec.md §4.7. ok
// is false if the stop flag fired mid-search; the caller must discard the
// result and keep the previous iteration's PV in that case.
func (w *Worker) rootSearch(depth int, alpha, beta eval.Score) (eval.Score, []board.Move, bool) {
	return w.negamax(depth, 0, alpha, beta, board.Move{})
}
