package repository

import (
	"context"
	"errors"
	"fmt"

	"memory-map-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgFriendRepository handles database operations for friendships
type PgFriendRepository struct {
	db *pgxpool.Pool
}

// NewPgFriendRepository creates a new friend repository
func NewPgFriendRepository(db *pgxpool.Pool) *PgFriendRepository {
	return &PgFriendRepository{db: db}
}

// Create creates a new friendship
func (r *PgFriendRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (user_a_id, user_b_id, created_at)
		VALUES ($1, $2, $3)
	`
	a, b := OrderedPair(f.UserAID, f.UserBID)
	_, err := r.db.Exec(ctx, query, a, b, f.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("friendship: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// Exists checks if two users are friends
func (r *PgFriendRepository) Exists(ctx context.Context, userAID, userBID string) (bool, error) {
	a, b := OrderedPair(userAID, userBID)
	query := `SELECT EXISTS(SELECT 1 FROM friendships WHERE user_a_id = $1 AND user_b_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// ListByUser retrieves every friendship the user is part of
func (r *PgFriendRepository) ListByUser(ctx context.Context, userID string) ([]*models.Friendship, error) {
	query := `
		SELECT user_a_id, user_b_id, created_at
		FROM friendships
		WHERE user_a_id = $1 OR user_b_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	defer rows.Close()

	var friendships []*models.Friendship
	for rows.Next() {
		var f models.Friendship
		if err := rows.Scan(&f.UserAID, &f.UserBID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friendships = append(friendships, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}
	return friendships, nil
}

// Delete removes a friendship
func (r *PgFriendRepository) Delete(ctx context.Context, userAID, userBID string) error {
	a, b := OrderedPair(userAID, userBID)
	query := `DELETE FROM friendships WHERE user_a_id = $1 AND user_b_id = $2`
	result, err := r.db.Exec(ctx, query, a, b)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	return nil
}
