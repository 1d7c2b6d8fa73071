package auth

import "errors"

var (
	// ErrConflict indicates the email is already registered.
	ErrConflict = errors.New("user already exists")
	// ErrUnauthorized covers every authentication or authorization failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRefreshToken is returned by RefreshToken; it matches ErrUnauthorized.
	ErrInvalidRefreshToken error = unauthorizedError{msg: "invalid or expired refresh token"}
	// ErrUserNotFound signals that the user could not be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists is reported by the directory on a unique email violation.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrSigning means tokens cannot be signed; it is a configuration error.
	ErrSigning = errors.New("token signing key is not configured")
	// ErrInvalidToken is returned for malformed, tampered or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

type unauthorizedError struct {
	msg string
}

func (e unauthorizedError) Error() string { return e.msg }

func (e unauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
