package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RemoteStore is the remote profile collaborator holding the canonical
// streak value. It is reachable only while a user session exists.
type RemoteStore interface {
	// FetchStreak reads the user's streak field.
	FetchStreak(ctx context.Context, userID int64) (int, error)

	// WriteStreak writes the user's streak field.
	WriteStreak(ctx context.Context, userID int64, streak int) error
}

// StreakTrackerConfig tunes remote access of the tracker.
type StreakTrackerConfig struct {
	// Timeout bounds each remote call.
	Timeout time.Duration
	// WriteRetries is the number of attempts for a streak write.
	WriteRetries int
	// RetryBackoff is the delay before the second attempt; it doubles
	// after each subsequent failure.
	RetryBackoff time.Duration
}

func (c *StreakTrackerConfig) withDefaults() StreakTrackerConfig {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	if out.WriteRetries <= 0 {
		out.WriteRetries = 3
	}
	if out.RetryBackoff <= 0 {
		out.RetryBackoff = 500 * time.Millisecond
	}
	return out
}

// StreakTracker reconciles the user-visible streak counter against the
// remote profile store. The remote value is canonical: Fetch adopts it.
// All remote failures are fail-soft: the previous in-memory value is
// retained, one notice is raised, and nothing propagates as a crash.
type StreakTracker struct {
	remote   RemoteStore
	notifier Notifier
	cfg      StreakTrackerConfig

	mu      sync.Mutex
	current map[int64]int
}

// NewStreakTracker creates a tracker over the remote store.
func NewStreakTracker(remote RemoteStore, notifier Notifier, cfg StreakTrackerConfig) *StreakTracker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &StreakTracker{
		remote:   remote,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
		current:  make(map[int64]int),
	}
}

// Current returns the last known streak for the user without touching
// the remote store.
func (t *StreakTracker) Current(userID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[userID]
}

// Fetch reads the remote streak and adopts it as the displayed value.
// On failure the previously displayed value is kept and exactly one
// notice is raised.
func (t *StreakTracker) Fetch(ctx context.Context, userID int64) int {
	callCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	streak, err := t.remote.FetchStreak(callCtx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Streak fetch failed, keeping last known value")
		t.notifier.Notify(userID, "Couldn't refresh your streak right now")
		return t.Current(userID)
	}

	t.mu.Lock()
	t.current[userID] = streak
	t.mu.Unlock()
	return streak
}

// Increment commits currentStreak+1 as the displayed value, then writes
// it remotely with bounded retry. The local completion flag is the sole
// gate: no chain verification happens here. A remote failure raises a
// notice but does not roll back the visible increment.
//
// When no value has been adopted for the user yet (first action after a
// restart) the remote value is fetch-reconciled first, so the increment
// builds on the canonical streak instead of writing 1 over it.
func (t *StreakTracker) Increment(ctx context.Context, userID int64) int {
	t.mu.Lock()
	_, known := t.current[userID]
	t.mu.Unlock()
	if !known {
		t.Fetch(ctx, userID)
	}

	t.mu.Lock()
	streak := t.current[userID] + 1
	t.current[userID] = streak
	t.mu.Unlock()

	if err := t.write(ctx, userID, streak); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int("streak", streak).Msg("Streak write failed after retries")
		t.notifier.Notify(userID, "Your streak was counted but couldn't be saved; it will sync next time")
	}
	return streak
}

// Reset writes a zero streak remotely and locally. Explicit admin path.
func (t *StreakTracker) Reset(ctx context.Context, userID int64) error {
	if err := t.write(ctx, userID, 0); err != nil {
		return err
	}
	t.mu.Lock()
	t.current[userID] = 0
	t.mu.Unlock()
	return nil
}

// write performs the remote write with doubling backoff between
// attempts. Each attempt has its own timeout.
func (t *StreakTracker) write(ctx context.Context, userID int64, streak int) error {
	backoff := t.cfg.RetryBackoff
	var err error

	for attempt := 0; attempt < t.cfg.WriteRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
		err = t.remote.WriteStreak(callCtx, userID, streak)
		cancel()
		if err == nil {
			return nil
		}

		log.Warn().
			Err(err).
			Int64("user_id", userID).
			Int("attempt", attempt+1).
			Msg("Streak write attempt failed")
	}
	return err
}
