package repository

import (
	"context"
	"errors"

	"memory-map-backend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches nothing
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique record is inserted twice
	ErrAlreadyExists = errors.New("already exists")
)

// FirstMemoryID is the id handed to the first memory created at runtime
const FirstMemoryID int64 = 100

// MemoryRepository stores memories. Memories are never updated or deleted.
type MemoryRepository interface {
	// Create assigns the next sequential id to m and stores it
	Create(ctx context.Context, m *models.Memory) error
	// List returns all memories in id order
	List(ctx context.Context) ([]models.Memory, error)
	// GetByIDs returns the memories in the order of ids
	GetByIDs(ctx context.Context, ids []int64) ([]models.Memory, error)
}

// UserRepository stores users
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByCode(ctx context.Context, code string) (*models.User, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// FriendRepository stores undirected friendships
type FriendRepository interface {
	Create(ctx context.Context, f *models.Friendship) error
	Exists(ctx context.Context, userAID, userBID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Friendship, error)
	Delete(ctx context.Context, userAID, userBID string) error
}

// OrderedPair returns the two ids with the smaller one first
func OrderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
