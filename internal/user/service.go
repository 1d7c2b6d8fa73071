package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abduss/moviesapi/internal/auth"
)

type directory interface {
	FindByEmail(ctx context.Context, email string) (auth.User, error)
	FindByID(ctx context.Context, id int64) (auth.User, error)
	List(ctx context.Context, filter auth.UserFilter) ([]auth.User, error)
	Create(ctx context.Context, in auth.NewUser) (auth.User, error)
	Update(ctx context.Context, id int64, changes auth.UserChanges) (auth.User, error)
	Delete(ctx context.Context, id int64) (auth.User, error)
}

// Service implements user administration on top of the directory.
type Service struct {
	directory directory
	hasher    auth.Hasher
	logger    *zap.Logger
}

// NewService constructs a user service.
func NewService(directory directory, hasher auth.Hasher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{directory: directory, hasher: hasher, logger: logger.Named("user")}
}

// CreateInput carries the fields accepted when an administrator creates a user.
type CreateInput struct {
	Email     string
	Password  string
	Role      auth.Role
	FirstName *string
	LastName  *string
}

// UpdateInput lists the fields to change; nil fields are kept.
type UpdateInput struct {
	Email     *string
	Password  *string
	Role      *auth.Role
	FirstName *string
	LastName  *string
}

// Create adds a user. Passwords already in bcrypt form are stored unchanged.
func (s *Service) Create(ctx context.Context, in CreateInput) (auth.User, error) {
	role := in.Role
	if role == "" {
		role = auth.RoleUser
	}
	if !role.Valid() {
		return auth.User{}, ErrInvalidRole
	}

	if _, err := s.directory.FindByEmail(ctx, in.Email); err == nil {
		return auth.User{}, ErrUserExists
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		return auth.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.HashIfNeeded(in.Password)
	if err != nil {
		return auth.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.directory.Create(ctx, auth.NewUser{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			return auth.User{}, ErrUserExists
		}
		return auth.User{}, err
	}

	s.logger.Info("user created", zap.Int64("user_id", created.ID), zap.String("role", string(role)))
	return created.SafeUser(), nil
}

// List returns users matching filter.
func (s *Service) List(ctx context.Context, filter auth.UserFilter) ([]auth.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, ErrInvalidRole
	}
	users, err := s.directory.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].SafeUser()
	}
	return users, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (auth.User, error) {
	found, err := s.directory.FindByID(ctx, id)
	if err != nil {
		return auth.User{}, err
	}
	return found.SafeUser(), nil
}

// Update applies in to the user with id, re-hashing a plaintext password.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (auth.User, error) {
	if in.Role != nil && !in.Role.Valid() {
		return auth.User{}, ErrInvalidRole
	}
	if _, err := s.directory.FindByID(ctx, id); err != nil {
		return auth.User{}, err
	}

	changes := auth.UserChanges{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	}
	if in.Password != nil {
		hash, err := s.hasher.HashIfNeeded(*in.Password)
		if err != nil {
			return auth.User{}, fmt.Errorf("hash password: %w", err)
		}
		changes.PasswordHash = &hash
	}

	updated, err := s.directory.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			return auth.User{}, ErrUserExists
		}
		return auth.User{}, err
	}
	return updated.SafeUser(), nil
}

// Remove deletes the user and returns the removed record.
func (s *Service) Remove(ctx context.Context, id int64) (auth.User, error) {
	removed, err := s.directory.Delete(ctx, id)
	if err != nil {
		return auth.User{}, err
	}
	s.logger.Info("user removed", zap.Int64("user_id", id))
	return removed.SafeUser(), nil
}
