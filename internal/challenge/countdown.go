package challenge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Countdown is the time remaining until the next local midnight,
// decomposed for display.
type Countdown struct {
	Hours   int
	Minutes int
	Seconds int
}

// String formats the countdown zero-padded, e.g. "07:05:09".
func (c Countdown) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Until computes the countdown from now to the next local midnight.
func Until(now time.Time) Countdown {
	next := StartOfDay(now).AddDate(0, 0, 1)
	remaining := int(next.Sub(now) / time.Second)
	return Countdown{
		Hours:   remaining / 3600,
		Minutes: (remaining % 3600) / 60,
		Seconds: remaining % 60,
	}
}

// Clock recomputes the countdown on a fixed interval and detects the
// calendar-day rollover by comparing the start of day across ticks,
// rather than matching a particular clock reading that a tick could
// skip. It performs no other side effects.
type Clock struct {
	interval   time.Duration
	loc        *time.Location
	onTick     func(Countdown)
	onRollover func(day time.Time)

	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewClock creates a countdown clock. onTick receives every recomputed
// countdown; onRollover fires once per calendar-day change with the new
// day's midnight. Either callback may be nil.
func NewClock(interval time.Duration, loc *time.Location, onTick func(Countdown), onRollover func(time.Time)) *Clock {
	if interval <= 0 {
		interval = time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &Clock{
		interval:   interval,
		loc:        loc,
		onTick:     onTick,
		onRollover: onRollover,
		now:        time.Now,
	}
}

// Start begins ticking in a background goroutine. The clock stops when
// Stop is called or the context is cancelled.
func (c *Clock) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	// Anchor the day before the goroutine runs: a boundary crossed
	// between Start returning and the first tick must still register
	// as a rollover.
	lastDay := StartOfDay(c.now().In(c.loc))

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.tick()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := c.now().In(c.loc)
				day := StartOfDay(now)
				if !day.Equal(lastDay) {
					lastDay = day
					log.Info().Time("day", day).Msg("Calendar day rolled over")
					if c.onRollover != nil {
						c.onRollover(day)
					}
				}
				c.tick()
			}
		}
	}()
}

func (c *Clock) tick() {
	if c.onTick != nil {
		c.onTick(Until(c.now().In(c.loc)))
	}
}

// Stop cancels the ticking goroutine and waits for it to exit. Safe to
// call more than once; only the first call has effect.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() {
		if c.cancel == nil {
			return
		}
		c.cancel()
		<-c.done
	})
}
