package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is a flat authorization role.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an application user as stored in the directory.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    *string   `json:"firstName,omitempty"`
	LastName     *string   `json:"lastName,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SafeUser removes sensitive fields for response payloads.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	return u
}

// Claims is the identity payload signed into access and refresh tokens.
type Claims struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Role      Role    `json:"role"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the token payload for a user. The password hash is never copied.
func ClaimsFor(u User) Claims {
	return Claims{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// TokenPair bundles access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult contains the stripped user and the tokens issued for it.
type AuthResult struct {
	User   User
	Tokens TokenPair
}

// NewUser carries the fields needed to create a directory entry.
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Role         Role
}

// UserChanges lists the fields to update; nil fields are left untouched.
type UserChanges struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Role         *Role
}

// UserFilter narrows a directory listing; empty fields match everything.
type UserFilter struct {
	Email     string
	FirstName string
	LastName  string
	Role      Role
}
