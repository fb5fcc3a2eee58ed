// Command tmcheck verifies that timegm.Timegm inverts time.Unix(t, 0).UTC() for every
// sampled second of a range. By default it checks every second of the signed 32-bit range.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ngrash/go-timegm/sweep"
	"github.com/ngrash/go-timegm/timegm"
)

var (
	fromFlag          = flag.Int64("from", math.MinInt32, "First Unix second to check")
	toFlag            = flag.Int64("to", math.MaxInt32, "Last Unix second to check")
	strideFlag        = flag.Int64("stride", 1, "Check every n-th second")
	workersFlag       = flag.Int("workers", 0, "Number of parallel workers (default GOMAXPROCS)")
	maxMismatchesFlag = flag.Int("max-mismatches", sweep.DefaultMaxMismatches, "Number of mismatches to print")
	verboseFlag       = flag.Bool("v", false, "Log progress of every shard")
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("Usage: tmcheck [-from n] [-to n] [-stride n] [-workers n] [-max-mismatches n] [-v]")
	}

	logger, err := newLogger(*verboseFlag)
	if err != nil {
		return fmt.Errorf("creating logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := sweep.Range{From: *fromFlag, To: *toFlag, Stride: *strideFlag}
	rep, err := sweep.Run(ctx, r,
		sweep.WithLogger(logger),
		sweep.WithWorkers(*workersFlag),
		sweep.WithMaxMismatches(*maxMismatchesFlag),
	)
	if err != nil {
		return err
	}

	for _, m := range rep.Mismatches {
		printMismatch(m)
	}
	fmt.Printf("checked %d seconds in %v, %d mismatches\n", rep.Checked, rep.Elapsed.Round(time.Millisecond), rep.MismatchCount)
	return rep.Err()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build(zap.AddStacktrace(zapcore.PanicLevel))
}

// printMismatch shows the fields of the sampled second next to the fields of the
// second Timegm returned for them.
func printMismatch(m sweep.Mismatch) {
	got := timegm.FromTime(time.Unix(m.Got, 0))
	fmt.Printf("Timegm(%+v) = %d, want %d (-want +got):\n", m.Tm, m.Got, m.T)
	fmt.Println(cmp.Diff(m.Tm, got))
}
