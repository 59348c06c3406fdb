package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memory-map-backend/internal/models"
	"memory-map-backend/internal/repository"
)

// FriendService handles friend-list business logic
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService creates a new friend service
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// AddFriendRequest represents a request to add a friend by share code
type AddFriendRequest struct {
	FriendCode string `json:"friend_code"`
}

// AddFriend links the user with the owner of friendCode
func (s *FriendService) AddFriend(ctx context.Context, userID, friendCode string) (*models.Friendship, error) {
	friendCode = strings.ToUpper(strings.TrimSpace(friendCode))
	if len(friendCode) != shareCodeLength {
		return nil, fmt.Errorf("%w: friend code must be %d characters", ErrValidation, shareCodeLength)
	}

	friend, err := s.userRepo.GetByCode(ctx, friendCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up friend: %w", err)
	}

	if friend.ID == userID {
		return nil, ErrSelfFriend
	}

	a, b := repository.OrderedPair(userID, friend.ID)
	friendship := &models.Friendship{
		UserAID:   a,
		UserBID:   b,
		CreatedAt: time.Now(),
	}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyFriends
		}
		return nil, fmt.Errorf("failed to create friendship: %w", err)
	}

	return friendship, nil
}

// RemoveFriend deletes the friendship between the two users
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.friendRepo.Delete(ctx, userID, friendID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFriends
		}
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	return nil
}

// FriendIDs returns the ids of the user's friends, oldest friendship first
func (s *FriendService) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	friendships, err := s.friendRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.Other(userID))
	}
	return ids, nil
}

// FriendSet returns the user's friends as a lookup set
func (s *FriendService) FriendSet(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := s.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
