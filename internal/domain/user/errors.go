package user

import "errors"

var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrBetaUserNotFound is returned when a beta roster entry is not found
	ErrBetaUserNotFound = errors.New("beta user not found")

	// ErrEmailAlreadyExists is returned when email already exists
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrEmailRequired is returned when email is empty
	ErrEmailRequired = errors.New("email is required")

	// ErrInvalidUserID is returned when an ID is not a valid UUID
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrUserNil is returned when a nil record is passed to a write
	ErrUserNil = errors.New("user cannot be nil")
)
