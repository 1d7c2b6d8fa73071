package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abduss/moviesapi/internal/metrics"
)

// userDirectory is the part of the user store the auth flows need.
type userDirectory interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, in NewUser) (User, error)
}

// Service implements sign-up, sign-in and token refresh.
type Service struct {
	directory userDirectory
	hasher    Hasher
	tokens    *TokenService
	logger    *zap.Logger
}

// NewService creates a Service with dependencies. A nil logger discards output.
func NewService(directory userDirectory, hasher Hasher, tokens *TokenService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		directory: directory,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger.Named("auth"),
	}
}

// SignUpInput carries data for user registration.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// ValidateUser returns the user when password matches, or nil when the email
// is unknown or the password is wrong. An error means the directory failed.
func (s *Service) ValidateUser(ctx context.Context, email, password string) (*User, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil
	}
	return &user, nil
}

// SignUp registers a USER and issues its first token pair.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (AuthResult, error) {
	_, err := s.directory.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		metrics.ObserveAuth("sign_up", "conflict")
		return AuthResult{}, ErrConflict
	case !errors.Is(err, ErrUserNotFound):
		s.logger.Error("sign-up lookup failed", zap.Error(err))
		metrics.ObserveAuth("sign_up", "error")
		return AuthResult{}, ErrUnauthorized
	}

	hash, err := s.hasher.HashIfNeeded(input.Password)
	if err != nil {
		s.logger.Warn("sign-up hash failed", zap.Error(err))
		metrics.ObserveAuth("sign_up", "error")
		return AuthResult{}, ErrUnauthorized
	}

	user, err := s.directory.Create(ctx, NewUser{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         RoleUser,
	})
	if err != nil {
		// Two concurrent sign-ups can both pass the lookup above; the
		// unique constraint decides the loser.
		if errors.Is(err, ErrEmailAlreadyExists) {
			metrics.ObserveAuth("sign_up", "conflict")
			return AuthResult{}, ErrConflict
		}
		s.logger.Error("sign-up create failed", zap.Error(err))
		metrics.ObserveAuth("sign_up", "error")
		return AuthResult{}, ErrUnauthorized
	}

	result, err := s.issue(user)
	if err != nil {
		s.logger.Error("sign-up token issue failed", zap.Error(err))
		metrics.ObserveAuth("sign_up", "error")
		return AuthResult{}, ErrUnauthorized
	}

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID))
	metrics.ObserveAuth("sign_up", "success")
	return result, nil
}

// SignIn authenticates credentials and issues a token pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.ValidateUser(ctx, email, password)
	if err != nil {
		s.logger.Error("sign-in lookup failed", zap.Error(err))
		metrics.ObserveAuth("sign_in", "error")
		return AuthResult{}, ErrUnauthorized
	}
	if user == nil {
		metrics.ObserveAuth("sign_in", "rejected")
		return AuthResult{}, ErrUnauthorized
	}

	result, err := s.issue(*user)
	if err != nil {
		s.logger.Error("sign-in token issue failed", zap.Error(err))
		metrics.ObserveAuth("sign_in", "error")
		return AuthResult{}, ErrUnauthorized
	}

	metrics.ObserveAuth("sign_in", "success")
	return result, nil
}

// RefreshToken verifies refreshToken, re-reads the user by the embedded email
// and issues a new pair from the current record.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		metrics.ObserveAuth("refresh", "rejected")
		return TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.directory.FindByEmail(ctx, claims.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("refresh lookup failed", zap.Error(err))
		}
		metrics.ObserveAuth("refresh", "rejected")
		return TokenPair{}, ErrInvalidRefreshToken
	}

	pair, err := s.tokens.IssuePair(ClaimsFor(user))
	if err != nil {
		s.logger.Error("refresh token issue failed", zap.Error(err))
		metrics.ObserveAuth("refresh", "error")
		return TokenPair{}, ErrInvalidRefreshToken
	}

	metrics.ObserveAuth("refresh", "success")
	return pair, nil
}

func (s *Service) issue(user User) (AuthResult, error) {
	safe := user.SafeUser()
	pair, err := s.tokens.IssuePair(ClaimsFor(safe))
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: safe, Tokens: pair}, nil
}
