package challenge

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"socialstreak/internal/pkg/kvstore"
	"socialstreak/internal/pkg/lock"
)

// EngineConfig carries the engine's injected collaborators. Catalog,
// Store, and Streaks are required.
type EngineConfig struct {
	Catalog      *Catalog
	Store        kvstore.Store
	Streaks      *StreakTracker
	Locks        *lock.UserLock
	Location     *time.Location
	TickInterval time.Duration

	// OnComplete is invoked exactly once per successful completion with
	// the points awarded. May be nil.
	OnComplete func(userID int64, points int)
}

// Engine coordinates daily selection, completion, the countdown clock,
// and streak reconciliation. All state transitions flow through it.
type Engine struct {
	catalog     *Catalog
	selector    *Selector
	completions *Completions
	streaks     *StreakTracker
	locks       *lock.UserLock
	loc         *time.Location
	onComplete  func(userID int64, points int)

	clock *Clock
	now   func() time.Time

	mu        sync.Mutex
	countdown Countdown
	ticked    bool
}

// Today is the engine's view of the current challenge day for one user.
type Today struct {
	Challenge Challenge
	Completed bool
	Streak    int
	Countdown Countdown
}

// CompletionResult reports a successful completion.
type CompletionResult struct {
	Challenge Challenge
	Points    int
	Streak    int
}

// NewEngine creates an engine from the given configuration.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Catalog == nil || cfg.Catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("local store is required")
	}
	if cfg.Streaks == nil {
		return nil, fmt.Errorf("streak tracker is required")
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	locks := cfg.Locks
	if locks == nil {
		locks = lock.NewUserLock()
	}

	e := &Engine{
		catalog:     cfg.Catalog,
		selector:    NewSelector(cfg.Catalog, cfg.Store),
		completions: NewCompletions(cfg.Store),
		streaks:     cfg.Streaks,
		locks:       locks,
		loc:         loc,
		onComplete:  cfg.OnComplete,
		now:         time.Now,
	}
	// Rollover needs no explicit action: the new day's keys are simply
	// absent, so selection and completion reset on their own.
	e.clock = NewClock(cfg.TickInterval, loc, e.setCountdown, nil)
	return e, nil
}

// Start starts the countdown clock. The clock stops on Stop or when the
// context is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.clock.Start(ctx)
}

// Stop tears the engine down, cancelling the countdown clock exactly
// once.
func (e *Engine) Stop() {
	e.clock.Stop()
}

func (e *Engine) setCountdown(c Countdown) {
	e.mu.Lock()
	e.countdown = c
	e.ticked = true
	e.mu.Unlock()
}

// Countdown returns the most recently computed countdown, or a live
// computation when the clock has not ticked yet.
func (e *Engine) Countdown() Countdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ticked {
		return Until(e.now().In(e.loc))
	}
	return e.countdown
}

// Today resolves the current day's challenge, completion state, streak,
// and countdown for the user. Fetching the remote streak is fail-soft.
func (e *Engine) Today(ctx context.Context, userID int64) Today {
	day := e.today()
	scope := scopeFor(userID)
	return Today{
		Challenge: e.selector.ForDate(day, scope),
		Completed: e.completions.IsCompleted(day, scope),
		Streak:    e.streaks.Fetch(ctx, userID),
		Countdown: e.Countdown(),
	}
}

// Complete performs the completion action: at most once per calendar
// day per user. The local completion flag is written before the remote
// streak increment; the two are not transactional. OnComplete fires
// exactly once per success.
func (e *Engine) Complete(ctx context.Context, userID int64) (*CompletionResult, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	day := e.today()
	scope := scopeFor(userID)

	if e.completions.IsCompleted(day, scope) {
		return nil, ErrAlreadyCompleted
	}

	ch := e.selector.ForDate(day, scope)

	if err := e.completions.MarkCompleted(day, scope); err != nil {
		return nil, err
	}

	streak := e.streaks.Increment(ctx, userID)

	if e.onComplete != nil {
		e.onComplete(userID, ch.Points)
	}

	return &CompletionResult{Challenge: ch, Points: ch.Points, Streak: streak}, nil
}

// Regenerate overrides today's selection with a random catalog entry and
// clears today's completion flag.
func (e *Engine) Regenerate(userID int64) (Challenge, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	return e.selector.Regenerate(e.today(), scopeFor(userID))
}

// Reset clears today's completion flag and zeroes the remote streak.
// This is the explicit reset path; nothing else transitions a completed
// day back to incomplete.
func (e *Engine) Reset(ctx context.Context, userID int64) error {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	if err := e.completions.Clear(e.today(), scopeFor(userID)); err != nil {
		return err
	}
	return e.streaks.Reset(ctx, userID)
}

// Streak fetch-reconciles the user's streak from the remote store.
func (e *Engine) Streak(ctx context.Context, userID int64) int {
	return e.streaks.Fetch(ctx, userID)
}

func (e *Engine) today() time.Time {
	return e.now().In(e.loc)
}

func scopeFor(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
