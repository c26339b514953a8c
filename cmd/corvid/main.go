package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/uci"
	"github.com/corvidchess/corvid/pkg/eval"
	"github.com/seekerror/logw"
)

var (
	hash     = flag.Uint("hash", engine.DefaultHashMB, "Transposition table size in MB (0 disables it)")
	threads  = flag.Uint("threads", engine.DefaultThreads, "Number of Lazy SMP search threads")
	contempt = flag.Int("contempt", int(engine.DefaultContempt), "Centipawn penalty against repeating into a draw")
	noise    = flag.Uint("noise", 0, "Evaluation noise in millipawns (zero if deterministic)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: corvid [options]

corvid is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := engine.Options{
		Hash:     *hash,
		Threads:  *threads,
		UseTT:    *hash > 0,
		Noise:    *noise,
		Contempt: eval.Score(*contempt),
	}
	ev := eval.Tapered{Contempt: eval.Score(*contempt)}

	e := engine.New(ctx, "corvid", "corvidchess", ev, engine.WithOptions(opts), engine.WithSeed(time.Now().UnixNano()))

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
