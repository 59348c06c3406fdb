package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"memory-map-backend/internal/models"
)

// LocalMemoryRepository keeps memories in process memory. Seed memories keep
// their ids; created memories get sequential ids starting at FirstMemoryID,
// or after the highest seed id when that is larger.
type LocalMemoryRepository struct {
	mu       sync.RWMutex
	memories []models.Memory
	nextID   int64
}

// NewLocalMemoryRepository creates a store holding a copy of seed
func NewLocalMemoryRepository(seed []models.Memory) (*LocalMemoryRepository, error) {
	r := &LocalMemoryRepository{nextID: FirstMemoryID}
	seen := make(map[int64]bool, len(seed))
	for _, m := range seed {
		if seen[m.ID] {
			return nil, fmt.Errorf("seed memory %d: %w", m.ID, ErrAlreadyExists)
		}
		seen[m.ID] = true
		if m.ID >= r.nextID {
			r.nextID = m.ID + 1
		}
		r.memories = append(r.memories, m)
	}
	sort.SliceStable(r.memories, func(i, j int) bool {
		return r.memories[i].ID < r.memories[j].ID
	})
	return r, nil
}

// Create assigns the next id and appends the memory
func (r *LocalMemoryRepository) Create(_ context.Context, m *models.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.ID = r.nextID
	r.nextID++
	r.memories = append(r.memories, *m)
	return nil
}

// List returns a snapshot of all memories in id order
func (r *LocalMemoryRepository) List(_ context.Context) ([]models.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Memory(nil), r.memories...), nil
}

// GetByIDs returns the requested memories in the order given
func (r *LocalMemoryRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Memory, error) {
	all, _ := r.List(ctx)
	return orderByIDs(all, ids)
}

// LocalUserRepository keeps users in process memory
type LocalUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewLocalUserRepository creates an empty user store
func NewLocalUserRepository() *LocalUserRepository {
	return &LocalUserRepository{users: make(map[string]models.User)}
}

// Create stores a user; ids and codes must be unique
func (r *LocalUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == user.ID || u.Code == user.Code {
			return fmt.Errorf("user: %w", ErrAlreadyExists)
		}
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID retrieves a user by ID
func (r *LocalUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	return &u, nil
}

// GetByCode retrieves a user by share code
func (r *LocalUserRepository) GetByCode(_ context.Context, code string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Code == code {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", ErrNotFound)
}

// CodeExists checks if a code already exists
func (r *LocalUserRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

// UpdatePushToken updates the push token for a user
func (r *LocalUserRepository) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	u.PushToken = pushToken
	r.users[userID] = u
	return nil
}

// LocalFriendRepository keeps friendships in process memory
type LocalFriendRepository struct {
	mu          sync.RWMutex
	friendships []models.Friendship
}

// NewLocalFriendRepository creates an empty friendship store
func NewLocalFriendRepository() *LocalFriendRepository {
	return &LocalFriendRepository{}
}

// Create stores a friendship
func (r *LocalFriendRepository) Create(_ context.Context, f *models.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, b := OrderedPair(f.UserAID, f.UserBID)
	if r.indexOf(a, b) >= 0 {
		return fmt.Errorf("friendship: %w", ErrAlreadyExists)
	}
	r.friendships = append(r.friendships, models.Friendship{UserAID: a, UserBID: b, CreatedAt: f.CreatedAt})
	return nil
}

// Exists checks if two users are friends
func (r *LocalFriendRepository) Exists(_ context.Context, userAID, userBID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, b := OrderedPair(userAID, userBID)
	return r.indexOf(a, b) >= 0, nil
}

// ListByUser retrieves every friendship the user is part of, oldest first
func (r *LocalFriendRepository) ListByUser(_ context.Context, userID string) ([]*models.Friendship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Friendship
	for i := range r.friendships {
		f := r.friendships[i]
		if f.UserAID == userID || f.UserBID == userID {
			result = append(result, &f)
		}
	}
	return result, nil
}

// Delete removes a friendship
func (r *LocalFriendRepository) Delete(_ context.Context, userAID, userBID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, b := OrderedPair(userAID, userBID)
	i := r.indexOf(a, b)
	if i < 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	r.friendships = append(r.friendships[:i], r.friendships[i+1:]...)
	return nil
}

func (r *LocalFriendRepository) indexOf(a, b string) int {
	for i, f := range r.friendships {
		if f.UserAID == a && f.UserBID == b {
			return i
		}
	}
	return -1
}
