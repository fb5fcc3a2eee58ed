package sweep

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/ngrash/go-timegm/timegm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_AroundEpoch(t *testing.T) {
	r := Range{From: -100_000, To: 100_000, Stride: 1}
	rep, err := Run(context.Background(), r, WithWorkers(4), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.Checked != 200_001 {
		t.Errorf("Checked = %d, want 200001", rep.Checked)
	}
	if err := rep.Err(); err != nil {
		t.Errorf("Report.Err() = %v, want nil", err)
	}
}

func TestRun_Int32(t *testing.T) {
	r := Range{From: math.MinInt32, To: math.MaxInt32, Stride: 9973}
	rep, err := Run(context.Background(), r)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := rep.Err(); err != nil {
		t.Fatal(err)
	}
	// 430660 samples on the grid plus math.MaxInt32 itself.
	if rep.Checked != 430_661 {
		t.Errorf("Checked = %d, want 430661", rep.Checked)
	}
}

func TestRun_Checked(t *testing.T) {
	cases := []struct {
		name    string
		r       Range
		workers int
		want    int64
	}{
		{"Single second", Range{From: 5, To: 5, Stride: 1}, 8, 1},
		{"Stride ends on To", Range{From: 0, To: 9, Stride: 3}, 2, 4},
		{"Stride misses To", Range{From: 0, To: 10, Stride: 3}, 2, 5},
		{"Stride beyond To", Range{From: 0, To: 10, Stride: 100}, 3, 2},
		{"More workers than samples", Range{From: -2, To: 2, Stride: 1}, 64, 5},
		{"Full int64", Range{From: math.MinInt64, To: math.MaxInt64, Stride: 1 << 50}, 4, 16385},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rep, err := Run(context.Background(), c.r, WithWorkers(c.workers), WithMaxMismatches(0))
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if rep.Checked != c.want {
				t.Errorf("Checked = %d, want %d", rep.Checked, c.want)
			}
			if len(rep.Mismatches) != 0 {
				t.Errorf("kept %d mismatches, want none", len(rep.Mismatches))
			}
		})
	}
}

func TestRun_Mismatches(t *testing.T) {
	// Pretend the conversion is off by one second from 1970-01-01 00:00:10 on.
	broken := func(tm timegm.Tm) int64 {
		s := timegm.Timegm(tm)
		if s >= 10 {
			return s + 1
		}
		return s
	}
	r := Range{From: 0, To: 99, Stride: 1}
	rep, err := Run(context.Background(), r, WithWorkers(3), WithMaxMismatches(2), withConvert(broken))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.MismatchCount != 90 {
		t.Errorf("MismatchCount = %d, want 90", rep.MismatchCount)
	}
	want := []Mismatch{
		{T: 10, Tm: timegm.Tm{Year: 1970, Day: 1, Second: 10}, Got: 11},
		{T: 11, Tm: timegm.Tm{Year: 1970, Day: 1, Second: 11}, Got: 12},
	}
	if diff := cmp.Diff(want, rep.Mismatches); diff != "" {
		t.Errorf("Mismatches mismatch (-want +got):\n%s", diff)
	}

	var merr *MismatchError
	if !errors.As(rep.Err(), &merr) {
		t.Fatalf("Report.Err() = %v, want *MismatchError", rep.Err())
	}
	if diff := cmp.Diff(&MismatchError{Count: 90, First: want[0]}, merr); diff != "" {
		t.Errorf("MismatchError mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_InvalidRange(t *testing.T) {
	for _, r := range []Range{
		{From: 1, To: 0, Stride: 1},
		{From: 0, To: 1, Stride: 0},
		{From: 0, To: 1, Stride: -1},
	} {
		if _, err := Run(context.Background(), r); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Run(%+v) error = %v, want ErrInvalidRange", r, err)
		}
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Range{From: 0, To: 1 << 40, Stride: 1}, WithWorkers(2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRun_Elapsed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	slow := func(tm timegm.Tm) int64 {
		clock.Advance(time.Second)
		return timegm.Timegm(tm)
	}
	rep, err := Run(context.Background(), Range{From: 0, To: 9, Stride: 1},
		WithClock(clock), WithWorkers(3), withConvert(slow))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.Elapsed != 10*time.Second {
		t.Errorf("Elapsed = %v, want 10s", rep.Elapsed)
	}
}

func TestShardBounds(t *testing.T) {
	cases := []struct {
		steps uint64
		n     int
		want  [][2]uint64
	}{
		{0, 4, [][2]uint64{{0, 0}}},
		{9, 1, [][2]uint64{{0, 9}}},
		{9, 4, [][2]uint64{{0, 2}, {3, 5}, {6, 8}, {9, 9}}},
		{9, 0, [][2]uint64{{0, 9}}},
		{math.MaxUint64, 1, [][2]uint64{{0, math.MaxUint64}}},
		{math.MaxUint64, 2, [][2]uint64{{0, 1<<63 - 1}, {1 << 63, math.MaxUint64}}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, shardBounds(c.steps, c.n)); diff != "" {
			t.Errorf("shardBounds(%d, %d) mismatch (-want +got):\n%s", c.steps, c.n, diff)
		}
	}
}
