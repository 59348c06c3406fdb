package services

import "errors"

var (
	// ErrValidation marks caller input the service refuses
	ErrValidation = errors.New("validation failed")
	// ErrSelfFriend is returned when a user tries to befriend themselves
	ErrSelfFriend = errors.New("cannot add yourself as a friend")
	// ErrAlreadyFriends is returned for a duplicate friendship
	ErrAlreadyFriends = errors.New("already friends")
	// ErrNotFriends is returned when removing a friendship that does not exist
	ErrNotFriends = errors.New("not friends")
	// ErrUserNotFound is returned when a share code or id matches no user
	ErrUserNotFound = errors.New("user not found")
	// ErrMemoryNotFound is returned when a requested memory does not exist
	ErrMemoryNotFound = errors.New("memory not found")
	// ErrPhotoStorageDisabled is returned when no S3 bucket is configured
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
	// ErrNoEXIFLocation is returned when an uploaded photo carries no GPS tags
	ErrNoEXIFLocation = errors.New("photo has no location metadata")
)
