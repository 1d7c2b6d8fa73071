package movie

import "errors"

var (
	// ErrMovieExists indicates a movie with the same episode number is stored.
	ErrMovieExists = errors.New("movie already exists")
	// ErrMovieNotFound is returned when no movie has the requested id.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrInvalidMovie rejects payloads missing required fields.
	ErrInvalidMovie = errors.New("invalid movie")
)
