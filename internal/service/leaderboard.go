package service

import (
	"context"

	"socialstreak/internal/model"
	"socialstreak/internal/repository"
)

// LeaderboardService ranks a user and their friends.
type LeaderboardService struct {
	friends *repository.FriendRepository
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(friends *repository.FriendRepository) *LeaderboardService {
	return &LeaderboardService{friends: friends}
}

// ForUser returns the friend leaderboard including the user themselves,
// ranked by points then streak.
func (s *LeaderboardService) ForUser(ctx context.Context, userID int64, limit int) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.friends.Leaderboard(ctx, userID, limit)
}
