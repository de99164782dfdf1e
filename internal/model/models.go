// Package model defines the data models shared across the SocialStreak service.
package model

import "time"

// Profile represents a user's remotely persisted profile row.
// The streak and points columns are the canonical values; device-local
// completion state only gates when they may change.
type Profile struct {
	UserID          int64     `db:"user_id"`
	Username        string    `db:"username"`
	FullName        *string   `db:"full_name"`
	Streak          int       `db:"streak"`
	Points          int64     `db:"points"`
	TotalChallenges int       `db:"total_challenges"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// FriendRequest represents a pending, accepted, or rejected friend request.
type FriendRequest struct {
	ID         int64     `db:"id"`
	SenderID   int64     `db:"sender_id"`
	ReceiverID int64     `db:"receiver_id"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`

	// SenderUsername is populated by queries that join profiles.
	SenderUsername string `db:"-"`
}

// LeaderboardEntry is a ranked row combining a profile with its position.
type LeaderboardEntry struct {
	Rank     int
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Streak   int    `db:"streak"`
	Points   int64  `db:"points"`
}

// Friend request statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)
