package challenge

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"socialstreak/internal/pkg/kvstore"
)

// dateLayout keys per-day records in the local store.
const dateLayout = "2006-01-02"

// selectionKey returns the local-store key holding the selected
// challenge ID for a scope (user) and calendar day.
func selectionKey(scope string, day time.Time) string {
	return fmt.Sprintf("challenge:%s:%s", scope, day.Format(dateLayout))
}

// Ordinal maps a calendar date to a stable integer: the number of whole
// days between the Unix epoch and that date. Unlike day-of-month it
// never repeats within a year, so selection stays uniform for catalogs
// whose length does not divide 31.
func Ordinal(day time.Time) int {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix() / 86400)
}

// Selector chooses the challenge for a calendar day. Selection is a pure
// function of (date, catalog) until a persisted override exists for the
// date; the persisted choice then wins across restarts.
type Selector struct {
	catalog *Catalog
	store   kvstore.Store
}

// NewSelector creates a Selector over the given catalog and local store.
func NewSelector(catalog *Catalog, store kvstore.Store) *Selector {
	return &Selector{catalog: catalog, store: store}
}

// ForDate resolves the challenge for the given calendar day and scope.
// A persisted ID is honored when it still exists in the catalog; a stale
// ID (catalog revision) falls back to deterministic selection. The
// deterministic choice is persisted before returning so the same
// challenge is shown across restarts within one day.
func (s *Selector) ForDate(day time.Time, scope string) Challenge {
	key := selectionKey(scope, day)

	raw, err := s.store.Get(key)
	switch {
	case err == nil:
		id, convErr := strconv.Atoi(raw)
		if convErr == nil {
			if ch, ok := s.catalog.ByID(id); ok {
				return ch
			}
		}
		log.Warn().
			Str("key", key).
			Str("value", raw).
			Msg("Persisted challenge no longer in catalog, reselecting")
	case !errors.Is(err, kvstore.ErrNotFound):
		// Store trouble degrades to deterministic selection without
		// persistence; the same date still yields the same challenge.
		log.Warn().Err(err).Str("key", key).Msg("Local store read failed")
	}

	ch := s.deterministic(day)
	if setErr := s.store.Set(key, strconv.Itoa(ch.ID)); setErr != nil {
		log.Warn().Err(setErr).Str("key", key).Msg("Failed to persist challenge selection")
	}
	return ch
}

// deterministic picks catalog[ordinal mod len] for the day.
func (s *Selector) deterministic(day time.Time) Challenge {
	n := s.catalog.Len()
	idx := ((Ordinal(day) % n) + n) % n
	return s.catalog.At(idx)
}

// Regenerate overrides the day's selection with a uniformly random
// catalog entry, persists it under the date key, and clears the day's
// completion flag. This is an explicit user override, not part of the
// daily rollover.
func (s *Selector) Regenerate(day time.Time, scope string) (Challenge, error) {
	ch := s.catalog.At(rand.Intn(s.catalog.Len()))

	key := selectionKey(scope, day)
	if err := s.store.Set(key, strconv.Itoa(ch.ID)); err != nil {
		return Challenge{}, fmt.Errorf("persist regenerated challenge: %w", err)
	}
	if err := s.store.Remove(completionKey(scope, day)); err != nil {
		return Challenge{}, fmt.Errorf("clear completion flag: %w", err)
	}

	log.Info().
		Str("scope", scope).
		Int("challenge_id", ch.ID).
		Msg("Challenge regenerated")
	return ch, nil
}
