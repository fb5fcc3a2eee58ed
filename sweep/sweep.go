// Package sweep checks timegm.Timegm against the standard library over ranges of Unix
// time.
//
// For every sampled second t, the second is decomposed into GMT fields with
// time.Unix(t, 0).UTC() and converted back with timegm.Timegm. Any result other than t
// is a mismatch. The range is split into contiguous shards that are checked in parallel.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ngrash/go-timegm/timegm"
)

// ErrInvalidRange is returned by Run for ranges with From > To or Stride < 1.
var ErrInvalidRange = errors.New("sweep: invalid range")

// Range is an inclusive range of Unix seconds. Every Stride-th second starting at From
// is sampled. To is always sampled, even if it is not on the stride.
type Range struct {
	From   int64
	To     int64
	Stride int64
}

func (r Range) validate() error {
	if r.From > r.To {
		return fmt.Errorf("%w: from %d is after to %d", ErrInvalidRange, r.From, r.To)
	}
	if r.Stride < 1 {
		return fmt.Errorf("%w: stride %d is not positive", ErrInvalidRange, r.Stride)
	}
	return nil
}

// steps returns the number of strides between From and the last sample on the grid.
// The arithmetic is unsigned so that the full int64 range does not overflow.
func (r Range) steps() uint64 {
	return (uint64(r.To) - uint64(r.From)) / uint64(r.Stride)
}

// at returns the i-th sample on the grid.
func (r Range) at(i uint64) int64 {
	return int64(uint64(r.From) + i*uint64(r.Stride))
}

// Mismatch is a second that did not survive the round trip.
type Mismatch struct {
	// T is the sampled second.
	T int64
	// Tm is T decomposed into GMT fields.
	Tm timegm.Tm
	// Got is what Timegm returned for Tm.
	Got int64
}

// MismatchError reports that a sweep found at least one mismatch.
type MismatchError struct {
	Count int64
	First Mismatch
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("sweep: %d round trip mismatches, first at %d: Timegm(%+v) = %d",
		e.Count, e.First.T, e.First.Tm, e.First.Got)
}

// Report summarizes a sweep.
type Report struct {
	// Checked is the number of sampled seconds.
	Checked int64
	// MismatchCount is the total number of mismatches found.
	MismatchCount int64
	// Mismatches holds the earliest mismatches, at most as many as configured with
	// WithMaxMismatches, ordered by T.
	Mismatches []Mismatch
	// Elapsed is the wall time the sweep took.
	Elapsed time.Duration
}

// Err returns a *MismatchError if the sweep found mismatches and nil otherwise.
func (r Report) Err() error {
	if r.MismatchCount == 0 {
		return nil
	}
	e := &MismatchError{Count: r.MismatchCount}
	if len(r.Mismatches) > 0 {
		e.First = r.Mismatches[0]
	}
	return e
}

// checkInterval is the number of samples a shard checks between looking at its context.
const checkInterval = 1 << 16

type shardResult struct {
	checked    int64
	count      int64
	mismatches []Mismatch
}

// Run checks every sample of r and reports the result.
// It returns ErrInvalidRange for malformed ranges and the context's error if ctx is
// done before all shards finished. Mismatches are not errors, see Report.Err.
func Run(ctx context.Context, r Range, opts ...Option) (Report, error) {
	if err := r.validate(); err != nil {
		return Report{}, err
	}
	cfg := newConfig(opts...)

	start := cfg.clock.Now()
	steps := r.steps()
	shards := shardBounds(steps, cfg.workers)
	results := make([]shardResult, len(shards))

	cfg.logger.Debug("sweep started",
		zap.Int64("from", r.From),
		zap.Int64("to", r.To),
		zap.Int64("stride", r.Stride),
		zap.Int("shards", len(shards)),
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, b := range shards {
		i, b := i, b
		g.Go(func() error {
			res, err := runShard(ctx, cfg, r, b[0], b[1])
			if err != nil {
				return err
			}
			results[i] = res
			cfg.logger.Debug("shard finished",
				zap.Int("shard", i),
				zap.Int64("from", r.at(b[0])),
				zap.Int64("to", r.at(b[1])),
				zap.Int64("checked", res.checked),
				zap.Int64("mismatches", res.count),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var rep Report
	for _, res := range results {
		rep.Checked += res.checked
		rep.MismatchCount += res.count
		rep.Mismatches = append(rep.Mismatches, res.mismatches...)
	}

	// The grid may stop short of To.
	if last := r.at(steps); last != r.To {
		rep.Checked++
		if m, ok := check(cfg, r.To); ok {
			rep.MismatchCount++
			rep.Mismatches = append(rep.Mismatches, m)
		}
	}

	sort.Slice(rep.Mismatches, func(i, j int) bool {
		return rep.Mismatches[i].T < rep.Mismatches[j].T
	})
	if len(rep.Mismatches) > cfg.maxMismatches {
		rep.Mismatches = rep.Mismatches[:cfg.maxMismatches]
	}
	rep.Elapsed = cfg.clock.Since(start)

	cfg.logger.Info("sweep finished",
		zap.Int64("checked", rep.Checked),
		zap.Int64("mismatches", rep.MismatchCount),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

func runShard(ctx context.Context, cfg config, r Range, lo, hi uint64) (shardResult, error) {
	var res shardResult
	for i := lo; ; i++ {
		if (i-lo)%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return shardResult{}, err
			}
		}
		res.checked++
		if m, ok := check(cfg, r.at(i)); ok {
			res.count++
			if len(res.mismatches) < cfg.maxMismatches {
				res.mismatches = append(res.mismatches, m)
			}
		}
		if i == hi {
			return res, nil
		}
	}
}

func check(cfg config, sec int64) (Mismatch, bool) {
	tm := timegm.FromTime(time.Unix(sec, 0))
	got := cfg.convert(tm)
	if got == sec {
		return Mismatch{}, false
	}
	return Mismatch{T: sec, Tm: tm, Got: got}, true
}

// shardBounds splits the grid indices [0, steps] into at most n contiguous,
// inclusive intervals of nearly equal size.
func shardBounds(steps uint64, n int) [][2]uint64 {
	if n < 1 {
		n = 1
	}
	// steps+1 samples, computed without overflowing when steps is the maximum.
	size := steps/uint64(n) + 1
	var bounds [][2]uint64
	for lo := uint64(0); ; {
		hi := lo + size - 1
		if hi < lo || hi >= steps {
			bounds = append(bounds, [2]uint64{lo, steps})
			return bounds
		}
		bounds = append(bounds, [2]uint64{lo, hi})
		lo = hi + 1
	}
}

// DefaultMaxMismatches is the number of mismatches a Report keeps unless configured
// otherwise with WithMaxMismatches.
const DefaultMaxMismatches = 16

type config struct {
	logger        *zap.Logger
	clock         clockwork.Clock
	workers       int
	maxMismatches int
	convert       func(timegm.Tm) int64
}

func newConfig(opts ...Option) config {
	cfg := config{
		logger:        zap.NewNop(),
		clock:         clockwork.NewRealClock(),
		workers:       runtime.GOMAXPROCS(0),
		maxMismatches: DefaultMaxMismatches,
		convert:       timegm.Timegm,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Option configures Run.
type Option func(*config)

// WithLogger sets the logger for progress messages. Shard progress is logged at debug
// level, the summary at info level.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the clock used to measure Report.Elapsed.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithWorkers sets the number of shards checked in parallel.
// Values below 1 are ignored. The default is runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithMaxMismatches limits how many mismatches a Report keeps.
// The count in Report.MismatchCount is not affected.
func WithMaxMismatches(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxMismatches = n
		}
	}
}

// withConvert replaces the conversion under test.
func withConvert(f func(timegm.Tm) int64) Option {
	return func(c *config) {
		c.convert = f
	}
}
