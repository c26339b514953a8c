// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corvidchess/corvid/pkg/board"
	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/corvidchess/corvid/pkg/search"
	"github.com/corvidchess/corvid/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

// ProtocolName is the line a GUI sends to select this protocol.
const ProtocolName = "uci"

// benchDepth and benchPositions define the engine's self-contained `bench`
// command, per spec.md §6: a fixed, single-threaded workload usable to
// sanity-check node throughput across changes without any external tooling.
const benchDepth = 10

var benchPositions = []string{
	fen.Initial,
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"rnbqkb1r/pp1p1ppp/2p2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 0 4",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
}

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e *engine.Engine

	out chan<- string

	active       atomic.Bool    // user is waiting for engine to move
	ponder       chan search.PV // chan for intermediate search information
	lastPosition string         // last position line (empty if no last position)

	quit   chan struct{}
	closed atomic.Bool
}

// NewDriver starts a driver that reads UCI commands from in and writes
// protocol lines to the returned channel.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		out:    out,
		ponder: make(chan search.PV, 400),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	opts := d.e.Options()
	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", opts.Hash, engine.MinHashMB, engine.MaxHashMB)
	d.out <- fmt.Sprintf("option name Threads type spin default %v min %v max %v", opts.Threads, engine.MinThreads, engine.MaxThreads)
	d.out <- fmt.Sprintf("option name UseTT type check default %v", opts.UseTT)
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			if !d.dispatch(ctx, line) {
				return
			}

		case pv := <-d.ponder:
			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// dispatch handles one input line. It returns false iff the driver should quit.
func (d *Driver) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch strings.ToLower(cmd) {
	case "isready":
		d.out <- "readyok"

	case "debug":
		// Debug-level traffic already goes through logw; no separate mode needed.

	case "setoption":
		d.setOption(ctx, args)

	case "register":
		// Registration is not required by this engine.

	case "ucinewgame":
		d.ensureInactive(ctx)
		d.lastPosition = ""
		if err := d.e.NewGame(ctx); err != nil {
			logw.Errorf(ctx, "ucinewgame failed: %v", err)
		}

	case "position":
		d.ensureInactive(ctx)
		d.position(ctx, line, args)

	case "go":
		d.ensureInactive(ctx)
		d.goSearch(ctx, line, args)

	case "stop":
		pv, err := d.e.Halt(ctx)
		if err == nil {
			d.searchCompleted(ctx, pv)
		}

	case "ponderhit":
		// Pondering is not implemented; treated as a no-op.

	case "perft":
		d.perft(ctx, args)

	case "bench":
		d.bench(ctx)

	case "quit":
		return false

	default:
		logw.Warningf(ctx, "Unknown command %q: %v", cmd, args)
	}
	return true
}

func (d *Driver) setOption(ctx context.Context, args []string) {
	var name, value string
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 3 {
		value = args[3]
	}

	switch name {
	case "Hash":
		n, err := strconv.Atoi(value)
		if err != nil {
			logw.Errorf(ctx, "Invalid Hash value %q: %v", value, err)
			return
		}
		if err := d.e.SetHash(uint(n)); err != nil {
			logw.Errorf(ctx, "SetHash failed: %v", err)
		}

	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil {
			logw.Errorf(ctx, "Invalid Threads value %q: %v", value, err)
			return
		}
		d.e.SetThreads(uint(n))

	case "UseTT":
		on, err := strconv.ParseBool(value)
		if err != nil {
			logw.Errorf(ctx, "Invalid UseTT value %q: %v", value, err)
			return
		}
		if err := d.e.SetUseTT(on); err != nil {
			logw.Errorf(ctx, "SetUseTT failed: %v", err)
		}

	default:
		logw.Warningf(ctx, "Unknown option %q", name)
	}
}

func (d *Driver) position(ctx context.Context, line string, args []string) {
	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		// Continuation of game: apply only the newly appended moves.

		moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range strings.Fields(moves) {
			if arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				logw.Errorf(ctx, "Illegal position move %q: %v", arg, err)
			}
		}
		d.lastPosition = line
		return
	}

	position := fen.Initial
	if len(args) >= 7 && args[0] == "fen" {
		position = strings.Join(args[1:7], " ")
	}
	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "Invalid position %q: %v", line, err)
		return
	}

	move := false
	for _, arg := range args {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			logw.Errorf(ctx, "Illegal position move %q: %v", arg, err)
		}
	}
	d.lastPosition = line
}

func (d *Driver) goSearch(ctx context.Context, line string, args []string) {
	var opt searchctl.Options
	var tc searchctl.TimeControl
	haveTC := false
	infinite := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth", "movetime", "wtime", "btime", "winc", "binc", "movestogo", "mate", "nodes":
			cmd := args[i]
			i++
			if i >= len(args) {
				logw.Errorf(ctx, "No argument for %v: %v", cmd, line)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", line, err)
				return
			}

			switch cmd {
			case "depth":
				opt.DepthLimit = lang.Some(uint(n))
			case "movetime":
				tc.MoveTime = time.Duration(n) * time.Millisecond
				haveTC = true
			case "wtime":
				tc.White = time.Duration(n) * time.Millisecond
				haveTC = true
			case "btime":
				tc.Black = time.Duration(n) * time.Millisecond
				haveTC = true
			case "winc":
				tc.WhiteInc = time.Duration(n) * time.Millisecond
				haveTC = true
			case "binc":
				tc.BlackInc = time.Duration(n) * time.Millisecond
				haveTC = true
			case "movestogo", "mate", "nodes":
				// Not modeled by this search; acknowledged but ignored.
			}

		case "infinite":
			infinite = true

		default:
			// searchmoves/ponder and anything else: silently ignored.
		}
	}

	if haveTC {
		opt.TimeControl = lang.Some(tc)
	}

	out, err := d.e.Analyze(ctx, opt)
	if err != nil {
		logw.Errorf(ctx, "Analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	// Forward progress. Complete the search once the channel closes, unless
	// the GUI asked for an infinite search (only "stop" ends those).
	go func() {
		var last search.PV
		for pv := range out {
			last = pv
			d.ponder <- pv
		}
		if !infinite {
			d.searchCompleted(ctx, last)
		}
	}()
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CAS(true, false) {
		if len(pv.Moves) > 0 {
			// Directly before bestmove, send a final info line so the GUI has
			// the complete statistics about the last search.
			d.out <- printPV(pv)
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		} else {
			// No PV: position is checkmate or stalemate.
			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

func (d *Driver) perft(ctx context.Context, args []string) {
	if len(args) == 0 {
		logw.Errorf(ctx, "perft requires a depth argument")
		return
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 0 {
		logw.Errorf(ctx, "Invalid perft depth %q", args[0])
		return
	}

	pos := d.e.Board()
	start := time.Now()
	nodes := board.Perft(pos, depth)
	elapsed := time.Since(start)

	d.out <- fmt.Sprintf("info string perft depth %v nodes %v time %v", depth, nodes, elapsed.Milliseconds())
}

func (d *Driver) bench(ctx context.Context) {
	ev := eval.Tapered{}
	var totalNodes uint64
	start := time.Now()

	for _, position := range benchPositions {
		pos, _, _, err := fen.Decode(position)
		if err != nil {
			logw.Errorf(ctx, "bench: invalid position %q: %v", position, err)
			continue
		}

		shared := &search.Shared{Stop: atomic.NewBool(false), Nodes: atomic.NewUint64(0)}
		w := search.NewWorker(pos, []board.Hash{pos.Hash()}, ev, eval.Tapered{}, eval.Random{}, shared, true)
		w.Iterate(benchDepth, nil)
		totalNodes += shared.Nodes.Load()
	}

	elapsed := time.Since(start)
	var nps uint64
	if elapsed > 0 {
		nps = uint64(time.Second) * totalNodes / uint64(elapsed)
	}
	d.out <- fmt.Sprintf("info string bench %v positions %v nodes %v nps %v ms", len(benchPositions), totalNodes, nps, elapsed.Milliseconds())
}

func printPV(pv search.PV) string {
	// "info depth 2 score cp 214 nodes 2124 time 1242 nps 1710 pv e2e4 e7e5 g1f3"

	parts := []string{"info", fmt.Sprintf("depth %v", pv.Depth), fmt.Sprintf("score %v", pv.Score)}
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv", board.PrintMoves(pv.Moves))
	}
	return strings.Join(parts, " ")
}
