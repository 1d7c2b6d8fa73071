package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abduss/moviesapi/internal/auth"
	"github.com/abduss/moviesapi/internal/movie"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

// userStore is an in-memory user directory shared by the auth and user services.
type userStore struct {
	mu     sync.Mutex
	users  map[int64]auth.User
	nextID int64
}

func newUserStore() *userStore {
	return &userStore{users: make(map[int64]auth.User)}
}

func (s *userStore) FindByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (s *userStore) FindByID(_ context.Context, id int64) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (s *userStore) List(_ context.Context, filter auth.UserFilter) ([]auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []auth.User
	for id := int64(1); id <= s.nextID; id++ {
		u, ok := s.users[id]
		if !ok {
			continue
		}
		if filter.Email != "" && u.Email != filter.Email {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *userStore) Create(_ context.Context, in auth.NewUser) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == in.Email {
			return auth.User{}, auth.ErrEmailAlreadyExists
		}
	}
	s.nextID++
	now := time.Now().UTC()
	u := auth.User{
		ID:           s.nextID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *userStore) Update(_ context.Context, id int64, changes auth.UserChanges) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	if changes.Role != nil {
		u.Role = *changes.Role
	}
	if changes.PasswordHash != nil {
		u.PasswordHash = *changes.PasswordHash
	}
	if changes.FirstName != nil {
		u.FirstName = changes.FirstName
	}
	if changes.LastName != nil {
		u.LastName = changes.LastName
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

func (s *userStore) Delete(_ context.Context, id int64) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	delete(s.users, id)
	return u, nil
}

// movieStore is an in-memory movie repository.
type movieStore struct {
	mu     sync.Mutex
	movies map[int64]movie.Movie
	nextID int64
}

func newMovieStore() *movieStore {
	return &movieStore{movies: make(map[int64]movie.Movie)}
}

func (s *movieStore) Create(_ context.Context, in movie.NewMovie) (movie.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movies {
		if m.EpisodeID == in.EpisodeID {
			return movie.Movie{}, movie.ErrMovieExists
		}
	}
	s.nextID++
	now := time.Now().UTC()
	m := movie.Movie{
		ID:        s.nextID,
		Title:     in.Title,
		EpisodeID: in.EpisodeID,
		Director:  in.Director,
		Producer:  in.Producer,
		Created:   now,
		Edited:    now,
	}
	s.movies[m.ID] = m
	return m, nil
}

func (s *movieStore) List(_ context.Context, filter movie.Filter) ([]movie.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]movie.Movie, 0)
	for id := int64(1); id <= s.nextID; id++ {
		m, ok := s.movies[id]
		if !ok {
			continue
		}
		if filter.EpisodeID != nil && m.EpisodeID != *filter.EpisodeID {
			continue
		}
		if filter.Director != "" && m.Director != filter.Director {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *movieStore) FindByID(_ context.Context, id int64) (movie.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	return m, nil
}

func (s *movieStore) Update(_ context.Context, id int64, changes movie.Changes) (movie.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	if changes.Title != nil {
		m.Title = *changes.Title
	}
	if changes.Producer != nil {
		m.Producer = *changes.Producer
	}
	m.Edited = time.Now().UTC()
	s.movies[id] = m
	return m, nil
}

func (s *movieStore) Delete(_ context.Context, id int64) (movie.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	delete(s.movies, id)
	return m, nil
}

var errDown = errors.New("connection refused")
