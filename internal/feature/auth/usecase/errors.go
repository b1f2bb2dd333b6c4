// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email, username or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when registering with an email that is already taken.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUsernameAlreadyExists is returned when registering with a username that is already taken.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrUserAlreadyExists is returned by the store when a unique constraint rejects the insert.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for any login failure caused by the caller's input.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWeakPassword is returned when the password does not meet the minimum length.
	ErrWeakPassword = errors.New("password is too short")
)
