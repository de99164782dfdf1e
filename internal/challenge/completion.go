package challenge

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"socialstreak/internal/pkg/kvstore"
)

// completedValue marks a day's completion record in the local store.
const completedValue = "completed"

// completionKey returns the local-store key holding the completion flag
// for a scope (user) and calendar day.
func completionKey(scope string, day time.Time) string {
	return fmt.Sprintf("completed:%s:%s", scope, day.Format(dateLayout))
}

// Completions tracks the per-day completion flag. A new calendar day has
// no record, so it naturally reads as not completed; nothing ever clears
// a flag except an explicit reset or regeneration.
type Completions struct {
	store kvstore.Store
}

// NewCompletions creates a Completions tracker over the local store.
func NewCompletions(store kvstore.Store) *Completions {
	return &Completions{store: store}
}

// IsCompleted reports whether the challenge for the given day was
// completed. Store failures read as not completed; the completion action
// guards against double counting separately.
func (c *Completions) IsCompleted(day time.Time, scope string) bool {
	_, err := c.store.Get(completionKey(scope, day))
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Warn().Err(err).Msg("Local store read failed checking completion")
		}
		return false
	}
	return true
}

// MarkCompleted records the day's completion flag. Marking an already
// completed day rewrites the same value and is harmless.
func (c *Completions) MarkCompleted(day time.Time, scope string) error {
	if err := c.store.Set(completionKey(scope, day), completedValue); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// Clear removes the day's completion flag. Used by regeneration and the
// explicit admin reset only.
func (c *Completions) Clear(day time.Time, scope string) error {
	if err := c.store.Remove(completionKey(scope, day)); err != nil {
		return fmt.Errorf("clear completion: %w", err)
	}
	return nil
}
