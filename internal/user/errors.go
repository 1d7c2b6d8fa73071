package user

import (
	"errors"

	"github.com/abduss/moviesapi/internal/auth"
)

var (
	// ErrUserExists indicates the email is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user has the requested id.
	ErrUserNotFound = auth.ErrUserNotFound
	// ErrInvalidRole rejects roles other than ADMIN and USER.
	ErrInvalidRole = errors.New("invalid role")
)
