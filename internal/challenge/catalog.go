// Package challenge implements the daily challenge engine: deterministic
// per-day selection from a fixed catalog, at-most-once completion tracking,
// a countdown to the next local midnight, and streak reconciliation
// against the remote profile store.
package challenge

import (
	"errors"
	"fmt"
)

// Challenge is a static catalog entry. The catalog is defined at build
// time and never changes at runtime.
type Challenge struct {
	ID          int
	Emoji       string
	Title       string
	Description string
	Points      int
}

// Catalog is an ordered, immutable sequence of challenges.
type Catalog struct {
	entries []Challenge
	byID    map[int]Challenge
}

// ErrEmptyCatalog is returned when constructing a catalog with no entries.
var ErrEmptyCatalog = errors.New("catalog must contain at least one challenge")

// NewCatalog builds a catalog from the given entries. IDs must be unique.
func NewCatalog(entries ...Challenge) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	byID := make(map[int]Challenge, len(entries))
	for _, e := range entries {
		if _, dup := byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate challenge id %d", e.ID)
		}
		byID[e.ID] = e
	}

	copied := make([]Challenge, len(entries))
	copy(copied, entries)

	return &Catalog{entries: copied, byID: byID}, nil
}

// MustCatalog is NewCatalog that panics on error. For build-time catalogs.
func MustCatalog(entries ...Challenge) *Catalog {
	c, err := NewCatalog(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the entry at position i in catalog order.
func (c *Catalog) At(i int) Challenge {
	return c.entries[i]
}

// ByID looks up an entry by its stable ID.
func (c *Catalog) ByID(id int) (Challenge, bool) {
	ch, ok := c.byID[id]
	return ch, ok
}

// Entries returns a copy of the catalog in order.
func (c *Catalog) Entries() []Challenge {
	out := make([]Challenge, len(c.entries))
	copy(out, c.entries)
	return out
}

// Default returns the built-in challenge catalog.
func Default() *Catalog {
	return MustCatalog(
		Challenge{
			ID:          1,
			Emoji:       "📱",
			Title:       "Share your breakfast",
			Description: "Post a photo of what you had for breakfast today",
			Points:      10,
		},
		Challenge{
			ID:          2,
			Emoji:       "🌅",
			Title:       "Morning walk",
			Description: "Take a 10-minute walk and share your route",
			Points:      15,
		},
		Challenge{
			ID:          3,
			Emoji:       "📚",
			Title:       "Read for 15 minutes",
			Description: "Read something interesting and share a quote",
			Points:      12,
		},
		Challenge{
			ID:          4,
			Emoji:       "💧",
			Title:       "Drink 8 glasses of water",
			Description: "Stay hydrated throughout the day",
			Points:      8,
		},
		Challenge{
			ID:          5,
			Emoji:       "🎨",
			Title:       "Create something",
			Description: "Draw, write, or make something creative",
			Points:      20,
		},
	)
}
