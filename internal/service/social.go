package service

import (
	"context"
	"errors"
	"fmt"

	"socialstreak/internal/model"
	"socialstreak/internal/repository"
)

// Social service errors.
var (
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
)

// SocialService handles the friend request lifecycle and friend lists.
type SocialService struct {
	profiles *repository.ProfileRepository
	friends  *repository.FriendRepository
}

// NewSocialService creates a new SocialService instance.
func NewSocialService(profiles *repository.ProfileRepository, friends *repository.FriendRepository) *SocialService {
	return &SocialService{profiles: profiles, friends: friends}
}

// SendRequest creates a pending friend request after validating both
// sides exist and the pair is neither already linked nor already pending.
func (s *SocialService) SendRequest(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	exists, err := s.profiles.Exists(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate receiver: %w", err)
	}
	if !exists {
		return nil, repository.ErrProfileNotFound
	}

	return s.friends.CreateRequest(ctx, senderID, receiverID)
}

// PendingRequests lists pending requests addressed to the user.
func (s *SocialService) PendingRequests(ctx context.Context, userID int64) ([]*model.FriendRequest, error) {
	return s.friends.PendingForReceiver(ctx, userID)
}

// AcceptRequest accepts a pending request addressed to the user and
// creates the friendship in both directions.
func (s *SocialService) AcceptRequest(ctx context.Context, requestID, userID int64) error {
	return s.friends.Accept(ctx, requestID, userID)
}

// RejectRequest rejects a pending request addressed to the user.
func (s *SocialService) RejectRequest(ctx context.Context, requestID, userID int64) error {
	return s.friends.Reject(ctx, requestID, userID)
}

// Friends lists the user's friends' profiles.
func (s *SocialService) Friends(ctx context.Context, userID int64, limit int) ([]*model.Profile, error) {
	return s.friends.ListFriends(ctx, userID, limit)
}

// Search finds other users by username fragment.
func (s *SocialService) Search(ctx context.Context, userID int64, q string, limit int) ([]*model.Profile, error) {
	if q == "" {
		return nil, nil
	}
	return s.profiles.Search(ctx, userID, q, limit)
}
