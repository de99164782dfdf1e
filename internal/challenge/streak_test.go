package challenge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTracker(remote *fakeRemote, notifier *countingNotifier) *StreakTracker {
	return NewStreakTracker(remote, notifier, StreakTrackerConfig{
		Timeout:      time.Second,
		WriteRetries: 3,
		RetryBackoff: time.Millisecond,
	})
}

func TestStreakWriteRetriesUntilSuccess(t *testing.T) {
	remote := newFakeRemote()
	notifier := &countingNotifier{}
	tracker := testTracker(remote, notifier)

	// Fail the first attempt only.
	remote.mu.Lock()
	remote.failWrites = 1
	remote.mu.Unlock()

	streak := tracker.Increment(context.Background(), 42)

	assert.Equal(t, 1, streak)
	assert.Equal(t, 2, remote.writes())
	assert.Equal(t, 1, remote.streakOf(42), "retry eventually lands the write")
	assert.Zero(t, notifier.count(), "no notice when a retry succeeds")
}

func TestStreakWriteExhaustsRetries(t *testing.T) {
	remote := newFakeRemote()
	notifier := &countingNotifier{}
	tracker := testTracker(remote, notifier)

	remote.setWriteErr(errors.New("profile store down"))

	streak := tracker.Increment(context.Background(), 42)

	assert.Equal(t, 1, streak, "visible value keeps the increment")
	assert.Equal(t, 3, remote.writes())
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, 1, tracker.Current(42))
}

func TestStreakIncrementAdoptsRemoteWhenUnknown(t *testing.T) {
	remote := newFakeRemote()
	remote.streaks[42] = 9
	tracker := testTracker(remote, &countingNotifier{})

	// First increment after construction: no value has been adopted
	// yet, so the remote streak is reconciled before incrementing.
	assert.Equal(t, 10, tracker.Increment(context.Background(), 42))
	assert.Equal(t, 10, remote.streakOf(42))
}

func TestStreakIncrementFetchFailureStartsFromLastKnown(t *testing.T) {
	remote := newFakeRemote()
	remote.setFetchErr(errors.New("profile store down"))
	notifier := &countingNotifier{}
	tracker := testTracker(remote, notifier)

	// The reconciling fetch fails; nothing was previously adopted, so
	// the increment builds on zero and the fetch raises its notice.
	assert.Equal(t, 1, tracker.Increment(context.Background(), 42))
	assert.Equal(t, 1, notifier.count())
}

func TestStreakIncrementStacksLocally(t *testing.T) {
	remote := newFakeRemote()
	tracker := testTracker(remote, &countingNotifier{})
	ctx := context.Background()

	assert.Equal(t, 1, tracker.Increment(ctx, 42))
	assert.Equal(t, 2, tracker.Increment(ctx, 42))
	assert.Equal(t, 2, remote.streakOf(42))
}

func TestStreakResetPropagatesError(t *testing.T) {
	remote := newFakeRemote()
	tracker := testTracker(remote, &countingNotifier{})
	ctx := context.Background()

	require.Equal(t, 1, tracker.Increment(ctx, 42))

	remote.setWriteErr(errors.New("profile store down"))
	err := tracker.Reset(ctx, 42)
	require.Error(t, err)
	assert.Equal(t, 1, tracker.Current(42), "failed reset leaves the value intact")

	remote.setWriteErr(nil)
	require.NoError(t, tracker.Reset(ctx, 42))
	assert.Equal(t, 0, tracker.Current(42))
	assert.Equal(t, 0, remote.streakOf(42))
}

func TestStreakWriteStopsOnContextCancel(t *testing.T) {
	remote := newFakeRemote()
	notifier := &countingNotifier{}
	tracker := NewStreakTracker(remote, notifier, StreakTrackerConfig{
		Timeout:      time.Second,
		WriteRetries: 5,
		RetryBackoff: time.Hour, // the cancel must preempt this wait
	})

	remote.setWriteErr(errors.New("profile store down"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		tracker.Increment(ctx, 42)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("increment did not return after context cancellation")
	}
	assert.Equal(t, 1, remote.writes(), "no further attempts after cancellation")
}

func TestStreakTrackerIsolatesUsers(t *testing.T) {
	remote := newFakeRemote()
	tracker := testTracker(remote, &countingNotifier{})
	ctx := context.Background()

	tracker.Increment(ctx, 1)
	tracker.Increment(ctx, 1)
	tracker.Increment(ctx, 2)

	assert.Equal(t, 2, tracker.Current(1))
	assert.Equal(t, 1, tracker.Current(2))
	assert.Equal(t, 2, remote.streakOf(1))
	assert.Equal(t, 1, remote.streakOf(2))
}
