package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/search/searchctl"
	"github.com/corvidchess/corvid/pkg/tt"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 1, 0)

// Hash and thread bounds, per spec.md §6's `setoption` table.
const (
	MinHashMB = 1
	MaxHashMB = 2048

	MinThreads = 1
	MaxThreads = 8

	DefaultHashMB   = 16
	DefaultThreads  = 1
	DefaultContempt = eval.Score(100)
)

// Options are the dynamic engine options a UCI `setoption` can change, per
// spec.md §6.
type Options struct {
	// Hash is the transposition table size in MB. Zero disables the table.
	Hash uint
	// Threads is the number of Lazy SMP worker goroutines.
	Threads uint
	// UseTT turns the transposition table on or off independently of Hash, per
	// spec.md §6's `setoption name UseTT`.
	UseTT bool
	// Depth is the default search depth limit applied when `go` carries none.
	// Zero means unlimited (bounded only by time or an explicit stop).
	Depth uint
	// Noise adds millipawn randomness to leaf evaluations.
	Noise uint
	// Contempt is the centipawn penalty applied against repeating into a draw,
	// per spec.md §4.4.
	Contempt eval.Score
}

// DefaultOptions returns the engine's out-of-the-box option values.
func DefaultOptions() Options {
	return Options{
		Hash:     DefaultHashMB,
		Threads:  DefaultThreads,
		UseTT:    true,
		Contempt: DefaultContempt,
	}
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%vMB, threads=%v, usett=%v, depth=%v, noise=%vmp, contempt=%v}", o.Hash, o.Threads, o.UseTT, o.Depth, o.Noise, o.Contempt)
}

// Engine encapsulates game-playing logic, search, and evaluation: the bridge
// between a UCI driver and the board/search/eval packages, per spec.md §6.
type Engine struct {
	name, author string

	launcher searchctl.Launcher
	ev       eval.Evaluator
	seed     int64

	mu   sync.Mutex
	opts Options

	pos                *board.Position
	halfmove, fullmove int
	history            []board.Hash

	table  *tt.Table
	noise  eval.Random
	active searchctl.Handle
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets the engine's initial runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithSeed configures the random seed used for leaf-evaluation noise, instead
// of the default seed of zero.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// New builds an engine around ev, the static evaluator driving every search.
func New(ctx context.Context, name, author string, ev eval.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: &searchctl.Iterative{},
		ev:       ev,
		opts:     DefaultOptions(),
	}
	for _, fn := range opts {
		fn(e)
	}
	if e.opts.Noise > 0 {
		e.noise = eval.NewRandom(int(e.opts.Noise), e.seed)
	}

	if err := e.rebuildTableLocked(); err != nil {
		logw.Errorf(ctx, "TT allocation failed: %v", err)
	}
	_ = e.resetLocked(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

// SetHash resizes the transposition table, clamped to [MinHashMB, MaxHashMB].
func (e *Engine) SetHash(mb uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = clampUint(mb, MinHashMB, MaxHashMB)
	return e.rebuildTableLocked()
}

// SetThreads sets the Lazy SMP worker count, clamped to [MinThreads, MaxThreads].
func (e *Engine) SetThreads(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Threads = clampUint(n, MinThreads, MaxThreads)
}

// SetUseTT turns the transposition table on or off.
func (e *Engine) SetUseTT(on bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.UseTT = on
	return e.rebuildTableLocked()
}

// SetDepth sets the default depth limit applied to searches that don't carry
// their own.
func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

// SetNoise sets the millipawn leaf-evaluation noise.
func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = millipawns
	e.noise = eval.Random{}
	if millipawns > 0 {
		e.noise = eval.NewRandom(int(millipawns), e.seed)
	}
}

// SetContempt sets the repetition-avoidance penalty, in centipawns.
func (e *Engine) SetContempt(cp int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Contempt = eval.Score(cp)
}

// rebuildTableLocked allocates (or frees) the transposition table to match the
// current Hash/UseTT options. A failed allocation keeps the previous table
// rather than leaving the engine without one, per spec.md §7's "out-of-memory
// on TT resize" recovery rule.
func (e *Engine) rebuildTableLocked() error {
	if !e.opts.UseTT || e.opts.Hash == 0 {
		e.table = nil
		return nil
	}
	t, err := tt.New(uint64(e.opts.Hash) << 20)
	if err != nil {
		return fmt.Errorf("keeping previous %vMB table: %w", e.opts.Hash, err)
	}
	e.table = t
	return nil
}

func clampUint(v, lo, hi uint) uint {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Board returns a copy of the current position, safe for the caller to read
// or probe without racing an active search.
func (e *Engine) Board() *board.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := *e.pos
	return &cp
}

// Position returns the current position in FEN format.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.pos, e.halfmove, e.fullmove)
}

// NewGame resets the engine for a new game: clears the transposition table
// (the thread-local killer/history/counter-move tables are already rebuilt
// fresh on every search, per spec.md §5, so only the TT needs clearing here)
// and resets to the starting position.
func (e *Engine) NewGame(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActiveLocked(ctx)
	if e.table != nil {
		e.table.Clear()
	}
	return e.resetLocked(ctx, fen.Initial)
}

// Reset resets the engine to a new starting position in FEN format, leaving
// the transposition table intact (only `ucinewgame`/NewGame clears it).
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActiveLocked(ctx)
	return e.resetLocked(ctx, position)
}

func (e *Engine) resetLocked(ctx context.Context, position string) error {
	pos, halfmove, fullmove, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.pos = pos
	e.halfmove = halfmove
	e.fullmove = fullmove
	e.history = []board.Hash{pos.Hash()}

	logw.Infof(ctx, "Reset to %v", e.pos)
	return nil
}

// Move plays the given move, usually an opponent move relayed from a GUI.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActiveLocked(ctx)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move token %q: %w", move, err)
	}

	turn := e.pos.Turn()
	for _, m := range e.pos.LegalMoves(turn) {
		if !m.Equals(candidate) {
			continue
		}

		reset := m.IsCapture() || m.Piece == board.Pawn
		e.pos.MakeMove(&m)
		e.history = append(e.history, e.pos.Hash())
		if reset {
			e.halfmove = 0
		} else {
			e.halfmove++
		}
		if e.pos.Turn() == board.White {
			e.fullmove++
		}

		logw.Debugf(ctx, "Played %v: %v", m, e.pos)
		return nil
	}
	return fmt.Errorf("illegal move: %v", candidate)
}

// Analyze starts a new search over the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}
	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.pos, opt)

	threads := int(e.opts.Threads)
	if threads < 1 {
		threads = 1
	}
	tap := eval.Tapered{Contempt: e.opts.Contempt}

	handle, out := e.launcher.Launch(ctx, e.pos, e.history, e.table, e.ev, tap, e.noise, threads, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActiveLocked(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActiveLocked(ctx context.Context) (search.PV, bool) {
	if e.active == nil {
		return search.PV{}, false
	}
	pv := e.active.Halt()
	logw.Infof(ctx, "Search halted: %v", pv)

	e.active = nil
	return pv, true
}
