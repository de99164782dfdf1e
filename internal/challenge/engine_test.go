package challenge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialstreak/internal/pkg/kvstore"
)

// fakeRemote is an in-memory RemoteStore with switchable failures.
type fakeRemote struct {
	mu         sync.Mutex
	streaks    map[int64]int
	fetchErr   error
	writeErr   error
	failWrites int // fail this many writes, then succeed
	writeCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{streaks: make(map[int64]int)}
}

func (f *fakeRemote) FetchStreak(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return 0, f.fetchErr
	}
	return f.streaks[userID], nil
}

func (f *fakeRemote) WriteStreak(_ context.Context, userID int64, streak int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if f.failWrites > 0 {
		f.failWrites--
		return errors.New("transient write failure")
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.streaks[userID] = streak
	return nil
}

func (f *fakeRemote) setFetchErr(err error) {
	f.mu.Lock()
	f.fetchErr = err
	f.mu.Unlock()
}

func (f *fakeRemote) setWriteErr(err error) {
	f.mu.Lock()
	f.writeErr = err
	f.mu.Unlock()
}

func (f *fakeRemote) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCalls
}

func (f *fakeRemote) streakOf(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streaks[userID]
}

// countingNotifier records every notice it receives.
type countingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *countingNotifier) Notify(_ int64, message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type completionRecord struct {
	userID int64
	points int
}

type engineFixture struct {
	engine   *Engine
	remote   *fakeRemote
	notifier *countingNotifier

	mu          sync.Mutex
	completions []completionRecord
}

func (f *engineFixture) completed() []completionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]completionRecord, len(f.completions))
	copy(out, f.completions)
	return out
}

// newEngineFixture builds an engine over a 3-entry catalog, an in-memory
// store, and a fake remote, pinned to 1970-01-08 noon UTC (ordinal 7, so
// deterministic selection picks entry index 1: id 2, 15 points).
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		remote:   newFakeRemote(),
		notifier: &countingNotifier{},
	}

	catalog, err := NewCatalog(
		Challenge{ID: 1, Title: "Challenge 1", Points: 10},
		Challenge{ID: 2, Title: "Challenge 2", Points: 15},
		Challenge{ID: 3, Title: "Challenge 3", Points: 12},
	)
	require.NoError(t, err)

	tracker := NewStreakTracker(f.remote, f.notifier, StreakTrackerConfig{
		Timeout:      time.Second,
		WriteRetries: 2,
		RetryBackoff: time.Millisecond,
	})

	engine, err := NewEngine(EngineConfig{
		Catalog:  catalog,
		Store:    kvstore.NewMemory(),
		Streaks:  tracker,
		Location: time.UTC,
		OnComplete: func(userID int64, points int) {
			f.mu.Lock()
			f.completions = append(f.completions, completionRecord{userID, points})
			f.mu.Unlock()
		},
	})
	require.NoError(t, err)

	engine.now = func() time.Time {
		return time.Date(1970, 1, 8, 12, 0, 0, 0, time.UTC)
	}
	f.engine = engine
	return f
}

func TestNewEngineValidation(t *testing.T) {
	store := kvstore.NewMemory()
	tracker := NewStreakTracker(newFakeRemote(), nil, StreakTrackerConfig{})

	_, err := NewEngine(EngineConfig{Store: store, Streaks: tracker})
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewEngine(EngineConfig{Catalog: testCatalog(t, 3), Streaks: tracker})
	assert.Error(t, err)

	_, err = NewEngine(EngineConfig{Catalog: testCatalog(t, 3), Store: store})
	assert.Error(t, err)
}

func TestEngineTodayResolvesDeterministicChallenge(t *testing.T) {
	f := newEngineFixture(t)
	f.remote.streaks[42] = 4

	today := f.engine.Today(context.Background(), 42)

	assert.Equal(t, 2, today.Challenge.ID)
	assert.Equal(t, 15, today.Challenge.Points)
	assert.False(t, today.Completed)
	assert.Equal(t, 4, today.Streak)
	assert.Equal(t, Countdown{Hours: 12}, today.Countdown)
}

func TestEngineCompleteAwardsPointsAndIncrementsStreak(t *testing.T) {
	f := newEngineFixture(t)
	f.remote.streaks[42] = 4
	ctx := context.Background()

	result, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Challenge.ID)
	assert.Equal(t, 15, result.Points)
	assert.Equal(t, 5, result.Streak)
	assert.Equal(t, 5, f.remote.streakOf(42))

	require.Equal(t, []completionRecord{{42, 15}}, f.completed())

	today := f.engine.Today(ctx, 42)
	assert.True(t, today.Completed)
}

func TestEngineCompleteReconcilesRemoteBeforeIncrement(t *testing.T) {
	f := newEngineFixture(t)
	f.remote.streaks[42] = 9
	ctx := context.Background()

	// No prior fetch: the very first action after a restart is the
	// completion itself. The increment must build on the canonical
	// remote value, never write 1 over an established streak.
	result, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Streak)
	assert.Equal(t, 10, f.remote.streakOf(42))
}

func TestEngineCompleteIsIdempotentPerDay(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)
	writesAfterFirst := f.remote.writes()

	_, err = f.engine.Complete(ctx, 42)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	assert.Len(t, f.completed(), 1, "completion hook must fire exactly once")
	assert.Equal(t, writesAfterFirst, f.remote.writes(), "repeat completion must not touch the remote store")
	assert.Equal(t, 1, f.engine.Streak(ctx, 42))
}

func TestEngineCompletionResetsNextDay(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)

	// Next calendar day: completion flag and selection key are absent,
	// so the user can complete again.
	f.engine.now = func() time.Time {
		return time.Date(1970, 1, 9, 12, 0, 0, 0, time.UTC)
	}

	today := f.engine.Today(ctx, 42)
	assert.False(t, today.Completed)
	assert.Equal(t, 3, today.Challenge.ID, "ordinal 8 selects entry index 2")

	result, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Streak)
}

func TestEngineCompleteSurvivesRemoteWriteFailure(t *testing.T) {
	f := newEngineFixture(t)
	f.remote.setWriteErr(errors.New("profile store down"))
	ctx := context.Background()

	result, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err, "remote failure must not fail the completion")

	assert.Equal(t, 1, result.Streak, "visible streak keeps the increment")
	assert.Equal(t, 2, f.remote.writes(), "write is retried up to the configured attempts")
	assert.Equal(t, 1, f.notifier.count(), "exactly one notice per failed write")
	assert.Len(t, f.completed(), 1)

	// The day stays completed even though the streak never reached the
	// remote store.
	assert.True(t, f.engine.Today(ctx, 42).Completed)
}

func TestEngineStreakFetchIsFailSoft(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, 1, f.remote.streakOf(42))

	f.remote.setFetchErr(errors.New("profile store down"))

	assert.Equal(t, 1, f.engine.Streak(ctx, 42), "last known value survives the outage")
	assert.Equal(t, 1, f.notifier.count(), "exactly one notice per failed fetch")
}

func TestEngineStreakFetchAdoptsRemoteValue(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)

	// Another device pushed a different value; remote wins on fetch.
	f.remote.mu.Lock()
	f.remote.streaks[42] = 9
	f.remote.mu.Unlock()

	assert.Equal(t, 9, f.engine.Streak(ctx, 42))
}

func TestEngineRegenerateAllowsRecompletion(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)

	ch, err := f.engine.Regenerate(42)
	require.NoError(t, err)
	assert.NotZero(t, ch.ID)

	today := f.engine.Today(ctx, 42)
	assert.False(t, today.Completed, "regeneration clears the completion flag")
	assert.Equal(t, ch.ID, today.Challenge.ID, "regenerated pick is persisted")

	result, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Streak)
	assert.Len(t, f.completed(), 2)
}

func TestEngineReset(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, f.engine.Reset(ctx, 42))

	assert.False(t, f.engine.Today(ctx, 42).Completed)
	assert.Equal(t, 0, f.engine.Streak(ctx, 42))
	assert.Equal(t, 0, f.remote.streakOf(42))
}

func TestEngineStateIsScopedPerUser(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Complete(ctx, 1)
	require.NoError(t, err)

	assert.True(t, f.engine.Today(ctx, 1).Completed)
	assert.False(t, f.engine.Today(ctx, 2).Completed)
	assert.Equal(t, 0, f.engine.Streak(ctx, 2))
}

func TestEngineCountdownLiveBeforeFirstTick(t *testing.T) {
	f := newEngineFixture(t)
	assert.Equal(t, Countdown{Hours: 12}, f.engine.Countdown())
}

func TestEngineConcurrentCompleteSingleWinner(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Complete(ctx, 42)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyCompleted)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.completed(), 1)
	assert.Equal(t, 1, f.remote.streakOf(42))
}
