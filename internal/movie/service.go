package movie

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type repository interface {
	Create(ctx context.Context, in NewMovie) (Movie, error)
	List(ctx context.Context, filter Filter) ([]Movie, error)
	FindByID(ctx context.Context, id int64) (Movie, error)
	Update(ctx context.Context, id int64, changes Changes) (Movie, error)
	Delete(ctx context.Context, id int64) (Movie, error)
}

// Service implements the movie catalogue operations.
type Service struct {
	repo   repository
	logger *zap.Logger
}

// NewService constructs a movie service.
func NewService(repo repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("movie")}
}

// Create stores a movie unless its episode number is taken.
func (s *Service) Create(ctx context.Context, in NewMovie) (Movie, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Director) == "" {
		return Movie{}, fmt.Errorf("%w: title and director are required", ErrInvalidMovie)
	}

	episode := in.EpisodeID
	existing, err := s.repo.List(ctx, Filter{EpisodeID: &episode})
	if err != nil {
		return Movie{}, fmt.Errorf("lookup episode: %w", err)
	}
	if len(existing) > 0 {
		return Movie{}, ErrMovieExists
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return Movie{}, err
	}
	s.logger.Info("movie created", zap.Int64("movie_id", created.ID), zap.Int("episode_id", created.EpisodeID))
	return created, nil
}

// List returns movies matching filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Movie, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a movie by id.
func (s *Service) Get(ctx context.Context, id int64) (Movie, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies changes to the movie with id.
func (s *Service) Update(ctx context.Context, id int64, changes Changes) (Movie, error) {
	if changes.Title != nil && strings.TrimSpace(*changes.Title) == "" {
		return Movie{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidMovie)
	}
	return s.repo.Update(ctx, id, changes)
}

// Remove deletes a movie and returns the removed record.
func (s *Service) Remove(ctx context.Context, id int64) (Movie, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrMovieNotFound) {
			s.logger.Error("movie delete failed", zap.Int64("movie_id", id), zap.Error(err))
		}
		return Movie{}, err
	}
	s.logger.Info("movie removed", zap.Int64("movie_id", id))
	return removed, nil
}
