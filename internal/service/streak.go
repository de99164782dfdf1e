package service

import (
	"context"

	"socialstreak/internal/repository"
)

// StreakStore adapts the profile repository to the challenge engine's
// remote store interface, keeping the engine decoupled from SQL.
type StreakStore struct {
	profiles *repository.ProfileRepository
}

// NewStreakStore creates a StreakStore over the profile repository.
func NewStreakStore(profiles *repository.ProfileRepository) *StreakStore {
	return &StreakStore{profiles: profiles}
}

// FetchStreak reads the canonical streak field.
func (s *StreakStore) FetchStreak(ctx context.Context, userID int64) (int, error) {
	return s.profiles.GetStreak(ctx, userID)
}

// WriteStreak writes the canonical streak field.
func (s *StreakStore) WriteStreak(ctx context.Context, userID int64, streak int) error {
	return s.profiles.SetStreak(ctx, userID, streak)
}
