// Package repository provides data access to the remote profile store.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"socialstreak/internal/model"
)

// Common errors for repository operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository handles profile row persistence, including the
// canonical streak field.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository instance.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `user_id, username, full_name, streak, points, total_challenges, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.UserID,
		&p.Username,
		&p.FullName,
		&p.Streak,
		&p.Points,
		&p.TotalChallenges,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create creates a new profile with zeroed streak and points.
func (r *ProfileRepository) Create(ctx context.Context, userID int64, username string) (*model.Profile, error) {
	const query = `
		INSERT INTO profiles (user_id, username, streak, points, total_challenges, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, NOW(), NOW())
		RETURNING ` + profileColumns

	p, err := scanProfile(r.pool.QueryRow(ctx, query, userID, username))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

// GetByID retrieves a profile by user ID.
// Returns ErrProfileNotFound if it does not exist.
func (r *ProfileRepository) GetByID(ctx context.Context, userID int64) (*model.Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetOrCreate retrieves a profile, creating one if it doesn't exist.
// Returns the profile and whether it was newly created.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID int64, username string) (*model.Profile, bool, error) {
	p, err := r.GetByID(ctx, userID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, false, err
	}

	p, err = r.Create(ctx, userID, username)
	if err != nil {
		// Handle race condition: another request might have created the profile
		p, err = r.GetByID(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return p, false, nil
	}

	return p, true, nil
}

// GetStreak reads the streak field for a user.
func (r *ProfileRepository) GetStreak(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT streak FROM profiles WHERE user_id = $1`

	var streak int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&streak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProfileNotFound
		}
		return 0, fmt.Errorf("failed to get streak: %w", err)
	}
	return streak, nil
}

// SetStreak writes the streak field for a user.
func (r *ProfileRepository) SetStreak(ctx context.Context, userID int64, streak int) error {
	const query = `
		UPDATE profiles
		SET streak = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, streak)
	if err != nil {
		return fmt.Errorf("failed to set streak: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// RecordCompletion adds awarded points and bumps the completed-challenge
// counter. Called by the completion hook after each successful completion.
func (r *ProfileRepository) RecordCompletion(ctx context.Context, userID int64, points int64) error {
	const query = `
		UPDATE profiles
		SET points = points + $2, total_challenges = total_challenges + 1, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, points)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// UpdateUsername updates a user's display name.
func (r *ProfileRepository) UpdateUsername(ctx context.Context, userID int64, username string) error {
	const query = `
		UPDATE profiles
		SET username = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, username)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// UpdateFullName updates a user's full name.
func (r *ProfileRepository) UpdateFullName(ctx context.Context, userID int64, fullName string) error {
	const query = `
		UPDATE profiles
		SET full_name = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, fullName)
	if err != nil {
		return fmt.Errorf("failed to update full name: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Search finds profiles whose username contains the query, excluding the
// searching user. Case-insensitive, capped at limit rows.
func (r *ProfileRepository) Search(ctx context.Context, userID int64, q string, limit int) ([]*model.Profile, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id <> $1 AND username ILIKE '%' || $2 || '%'
		ORDER BY username
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// Exists checks if a profile with the given user ID exists.
func (r *ProfileRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return exists, nil
}
