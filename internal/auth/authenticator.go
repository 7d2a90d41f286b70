// Package auth verifies username/password pairs against stored bcrypt hashes.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"walletsvc/internal/domain"
)

// HashCost is the bcrypt cost used when provisioning users.
const HashCost = 8

// UserSource is the slice of the store the authenticator needs.
type UserSource interface {
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Result reports the outcome of a credential check. Reason is set only when
// Matched is false.
type Result struct {
	Matched bool
	Reason  string
	UserID  uint
}

// Authenticator checks credentials against the user store.
type Authenticator struct {
	users UserSource
}

// New returns an Authenticator backed by the given user source.
func New(users UserSource) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate looks up the user by exact username and compares the password
// against the stored hash. The raw and hashed passwords never leave this
// function. A store failure is returned as an error; credential mismatches
// are reported in the Result.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Result, error) {
	user, err := a.users.UserByUsername(ctx, username)
	if errors.Is(err, domain.ErrNoSuchUser) {
		return Result{Reason: domain.ReasonNoSuchUser}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return Result{Reason: domain.ReasonBadPassword}, nil
	}
	return Result{Matched: true, UserID: user.ID}, nil
}

// HashPassword hashes a password at the fixed provisioning cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
