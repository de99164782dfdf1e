package challenge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func totalSeconds(c Countdown) int {
	return c.Hours*3600 + c.Minutes*60 + c.Seconds
}

// TestCountdownMonotonicProperty verifies that within one calendar day
// the countdown strictly decreases as time advances.
func TestCountdownMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

		s1 := rapid.IntRange(0, 86398).Draw(t, "offset1")
		s2 := rapid.IntRange(s1+1, 86399).Draw(t, "offset2")

		c1 := Until(base.Add(time.Duration(s1) * time.Second))
		c2 := Until(base.Add(time.Duration(s2) * time.Second))

		if totalSeconds(c1) <= totalSeconds(c2) {
			t.Fatalf("countdown did not decrease: offset %d -> %v, offset %d -> %v", s1, c1, s2, c2)
		}
	})
}

// TestCountdownDecompositionProperty verifies the hour/minute/second
// decomposition reassembles into the remaining seconds until midnight.
func TestCountdownDecompositionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		offset := rapid.IntRange(0, 86399).Draw(t, "offset")

		c := Until(base.Add(time.Duration(offset) * time.Second))

		if got, want := totalSeconds(c), 86400-offset; got != want {
			t.Fatalf("offset %d: total %d, want %d", offset, got, want)
		}
		if c.Minutes < 0 || c.Minutes > 59 || c.Seconds < 0 || c.Seconds > 59 {
			t.Fatalf("out-of-range components: %+v", c)
		}
	})
}

func TestCountdownResetsAcrossMidnight(t *testing.T) {
	beforeMidnight := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	afterMidnight := time.Date(2025, 6, 16, 0, 0, 1, 0, time.UTC)

	assert.Equal(t, 1, totalSeconds(Until(beforeMidnight)))
	assert.Equal(t, 86399, totalSeconds(Until(afterMidnight)))
}

func TestCountdownString(t *testing.T) {
	now := time.Date(2025, 6, 15, 16, 54, 51, 0, time.UTC)
	assert.Equal(t, "07:05:09", Until(now).String())
}

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2025, 6, 15, 18, 30, 0, 0, loc)
	start := StartOfDay(now)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), start)
	assert.Equal(t, loc, start.Location())
}

// fakeNow is a mutable clock source for driving Clock ticks.
type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

func TestClockDetectsRollover(t *testing.T) {
	fn := &fakeNow{t: time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)}

	ticks := make(chan Countdown, 64)
	rollovers := make(chan time.Time, 4)

	clock := NewClock(5*time.Millisecond, time.UTC,
		func(c Countdown) {
			select {
			case ticks <- c:
			default:
			}
		},
		func(day time.Time) { rollovers <- day },
	)
	clock.now = fn.now

	clock.Start(context.Background())
	defer clock.Stop()

	// First tick happens on the old day
	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("no initial tick")
	}

	// Jump the clock past midnight; the next tick must fire the rollover
	fn.set(time.Date(2025, 6, 16, 0, 0, 1, 0, time.UTC))

	select {
	case day := <-rollovers:
		assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), day)
	case <-time.After(time.Second):
		t.Fatal("rollover not detected")
	}
}

func TestClockSkippedSecondStillRollsOver(t *testing.T) {
	// A coarse tick interval can skip 23:59:59 entirely; the day
	// comparison must still catch the transition.
	fn := &fakeNow{t: time.Date(2025, 6, 15, 23, 59, 58, 500000000, time.UTC)}

	rollovers := make(chan time.Time, 4)
	clock := NewClock(5*time.Millisecond, time.UTC, nil,
		func(day time.Time) { rollovers <- day },
	)
	clock.now = fn.now

	clock.Start(context.Background())
	defer clock.Stop()

	fn.set(time.Date(2025, 6, 16, 0, 0, 2, 0, time.UTC))

	select {
	case <-rollovers:
	case <-time.After(time.Second):
		t.Fatal("rollover not detected when the boundary second was skipped")
	}
}

func TestClockStopIsIdempotent(t *testing.T) {
	clock := NewClock(time.Millisecond, time.UTC, func(Countdown) {}, nil)
	clock.Start(context.Background())

	clock.Stop()
	clock.Stop() // second call must not panic or block
}

func TestClockStopWithoutStart(t *testing.T) {
	clock := NewClock(time.Millisecond, time.UTC, nil, nil)
	clock.Stop() // must not block
}

func TestClockStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	count := 0
	clock := NewClock(time.Millisecond, time.UTC, func(Countdown) {
		mu.Lock()
		count++
		mu.Unlock()
	}, nil)

	clock.Start(ctx)
	cancel()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	settled := count
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, settled, count, "ticks must stop after context cancellation")
	mu.Unlock()
}
