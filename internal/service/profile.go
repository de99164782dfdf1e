// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"socialstreak/internal/model"
	"socialstreak/internal/repository"
)

// ProfileService handles profile lifecycle and edits.
type ProfileService struct {
	profiles *repository.ProfileRepository
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(profiles *repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// EnsureProfile ensures a profile exists, creating one if necessary.
// Returns the profile and whether it was newly created.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID int64, username string) (*model.Profile, bool, error) {
	p, created, err := s.profiles.GetOrCreate(ctx, userID, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure profile: %w", err)
	}

	// Refresh username if it changed on the messaging side
	if !created && username != "" && p.Username != username {
		if err := s.profiles.UpdateUsername(ctx, userID, username); err != nil {
			// Non-fatal: the profile exists, the stale name just lingers
			log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to refresh username")
		} else {
			p.Username = username
		}
	}

	return p, created, nil
}

// Get retrieves a profile by user ID.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// SetFullName updates the user's display name.
func (s *ProfileService) SetFullName(ctx context.Context, userID int64, fullName string) error {
	if fullName == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return s.profiles.UpdateFullName(ctx, userID, fullName)
}

// RecordCompletion credits awarded points and bumps the completed
// counter on the remote profile. Failures are logged, not fatal: the
// completion itself already happened locally.
func (s *ProfileService) RecordCompletion(ctx context.Context, userID int64, points int) {
	if err := s.profiles.RecordCompletion(ctx, userID, int64(points)); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Int("points", points).Msg("Failed to record completion remotely")
	}
}
