package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RefreshTokenTTL is fixed and does not follow the configured access TTL.
	RefreshTokenTTL = 24 * time.Hour

	defaultAccessTokenTTL = 24 * time.Hour
)

// TokenService issues and verifies HS256-signed tokens with a single
// process-wide secret injected at construction.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	nowFunc   func() time.Time
	parser    *jwt.Parser
}

// NewTokenService returns ErrSigning when secret is empty; callers should
// treat that as a fatal startup error.
func NewTokenService(secret string, accessTTL time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSigning
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenTTL
	}

	s := &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		nowFunc:   time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	return s, nil
}

// AccessTTL returns the configured access-token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// Issue signs claims with iat set to now and exp set to now+ttl.
func (s *TokenService) Issue(claims Claims, ttl time.Duration) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrSigning
	}

	now := s.nowFunc()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return signed, nil
}

// IssuePair signs an access token with the configured TTL and a refresh
// token with RefreshTokenTTL from the same claims.
func (s *TokenService) IssuePair(claims Claims) (TokenPair, error) {
	access, err := s.Issue(claims, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Issue(claims, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Every failure wraps ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	parsed, err := s.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
