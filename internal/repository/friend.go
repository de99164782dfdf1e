package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"socialstreak/internal/model"
)

// Friend request errors.
var (
	ErrRequestNotFound = errors.New("friend request not found")
	ErrRequestExists   = errors.New("friend request already exists")
	ErrAlreadyFriends  = errors.New("users are already friends")
)

// FriendRepository handles friend requests and friendships.
type FriendRepository struct {
	pool *pgxpool.Pool
}

// NewFriendRepository creates a new FriendRepository instance.
func NewFriendRepository(pool *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{pool: pool}
}

// CreateRequest creates a pending friend request from sender to receiver.
// Returns ErrRequestExists when a pending request already exists in
// either direction, and ErrAlreadyFriends when a friendship exists.
func (r *FriendRepository) CreateRequest(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
	friends, err := r.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	const existsQuery = `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE status = $3
			  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, existsQuery, senderID, receiverID, model.RequestPending).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if exists {
		return nil, ErrRequestExists
	}

	const query = `
		INSERT INTO friend_requests (sender_id, receiver_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, sender_id, receiver_id, status, created_at, updated_at
	`

	var req model.FriendRequest
	err = r.pool.QueryRow(ctx, query, senderID, receiverID, model.RequestPending).Scan(
		&req.ID,
		&req.SenderID,
		&req.ReceiverID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return &req, nil
}

// PendingForReceiver lists pending requests addressed to the user,
// newest first, with sender usernames joined in.
func (r *FriendRepository) PendingForReceiver(ctx context.Context, receiverID int64) ([]*model.FriendRequest, error) {
	const query = `
		SELECT fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at, fr.updated_at, p.username
		FROM friend_requests fr
		JOIN profiles p ON p.user_id = fr.sender_id
		WHERE fr.receiver_id = $1 AND fr.status = $2
		ORDER BY fr.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, receiverID, model.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.FriendRequest
	for rows.Next() {
		var req model.FriendRequest
		err := rows.Scan(
			&req.ID,
			&req.SenderID,
			&req.ReceiverID,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
			&req.SenderUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend requests: %w", err)
	}
	return requests, nil
}

// Accept marks the pending request accepted and inserts both friendship
// directions in one transaction. Only the receiver may accept.
func (r *FriendRepository) Accept(ctx context.Context, requestID, receiverID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const updateQuery = `
		UPDATE friend_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND receiver_id = $2 AND status = $4
		RETURNING sender_id
	`
	var senderID int64
	err = tx.QueryRow(ctx, updateQuery, requestID, receiverID, model.RequestAccepted, model.RequestPending).Scan(&senderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to accept friend request: %w", err)
	}

	const insertQuery = `
		INSERT INTO friends (user_id, friend_id, created_at)
		VALUES ($1, $2, NOW()), ($2, $1, NOW())
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertQuery, receiverID, senderID); err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit acceptance: %w", err)
	}
	return nil
}

// Reject marks the pending request rejected. Only the receiver may reject.
func (r *FriendRepository) Reject(ctx context.Context, requestID, receiverID int64) error {
	const query = `
		UPDATE friend_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND receiver_id = $2 AND status = $4
	`

	result, err := r.pool.Exec(ctx, query, requestID, receiverID, model.RequestRejected, model.RequestPending)
	if err != nil {
		return fmt.Errorf("failed to reject friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// AreFriends reports whether a friendship row exists between the users.
func (r *FriendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, otherID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// ListFriends returns the user's friends' profiles, capped at limit.
func (r *FriendRepository) ListFriends(ctx context.Context, userID int64, limit int) ([]*model.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM friends f
		JOIN profiles ON profiles.user_id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY profiles.username
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var profiles []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}
	return profiles, nil
}

// Leaderboard returns the user and their friends ranked by points, then
// streak, then username for a stable order.
func (r *FriendRepository) Leaderboard(ctx context.Context, userID int64, limit int) ([]*model.LeaderboardEntry, error) {
	const query = `
		SELECT p.user_id, p.username, p.streak, p.points
		FROM profiles p
		WHERE p.user_id = $1
		   OR p.user_id IN (SELECT friend_id FROM friends WHERE user_id = $1)
		ORDER BY p.points DESC, p.streak DESC, p.username
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*model.LeaderboardEntry
	rank := 0
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Streak, &e.Points); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		rank++
		e.Rank = rank
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}
