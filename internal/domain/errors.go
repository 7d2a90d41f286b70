package domain

import (
	"errors"
	"fmt"
)

// Reason codes surfaced to callers in the response envelope.
const (
	ReasonNoSuchUser        = "no-such-user"
	ReasonBadPassword       = "bad-password"
	ReasonNotAuthenticated  = "not-authenticated"
	ReasonExpired           = "expired"
	ReasonForbidden         = "forbidden"
	ReasonInvalidAmount     = "invalid-amount"
	ReasonInsufficientFunds = "insufficient-funds"
)

// Domain errors. Handlers translate these into HTTP-equivalent status codes;
// anything not listed here is treated as an infrastructure failure.
var (
	// ErrNoSuchUser means the supplied username matched no user row.
	ErrNoSuchUser = errors.New("user does not exist")

	// ErrBadPassword means the user exists but the password did not match.
	ErrBadPassword = errors.New("password is incorrect")

	// ErrNotAuthenticated means no session exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired means the session outlived the freshness window.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden means the user's role lacks the required capability.
	ErrForbidden = errors.New("missing capability")

	// ErrInvalidAmount means a zero (post-normalization) amount.
	ErrInvalidAmount = errors.New("amount must be a non-zero number")

	// ErrInsufficientFunds means a withdrawal exceeded the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUserNotFound means a ledger operation referenced a missing user.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoleNotFound means a user references a role that does not exist.
	ErrRoleNotFound = errors.New("role not found")
)

// IntegrityError reports stored-state corruption: a transaction-log write
// failing after its balance update, or a user referencing a missing role.
// It is never absorbed; callers surface it as a fatal failure.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation in %s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
