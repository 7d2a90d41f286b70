// Package perms maps a user to the capability set of their role.
package perms

import (
	"context"
	"errors"
	"fmt"

	"walletsvc/internal/domain"
)

// Source is the slice of the store the resolver needs.
type Source interface {
	UserByID(ctx context.Context, id uint) (*domain.User, error)
	RoleByID(ctx context.Context, id uint) (*domain.Role, error)
}

// Resolver resolves capabilities fresh on every call, so role changes take
// effect on the next request.
type Resolver struct {
	source Source
}

// NewResolver returns a Resolver backed by the given source.
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the capabilities of the user's role. A user without an
// existing role is stored-state corruption and is surfaced as an integrity
// error, never silently defaulted.
func (r *Resolver) Resolve(ctx context.Context, userID uint) (domain.Capabilities, error) {
	user, err := r.source.UserByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Capabilities{}, &domain.IntegrityError{Op: "permission lookup", Err: err}
	}
	if err != nil {
		return domain.Capabilities{}, fmt.Errorf("resolve permissions: %w", err)
	}
	role, err := r.source.RoleByID(ctx, user.RoleID)
	if errors.Is(err, domain.ErrRoleNotFound) {
		return domain.Capabilities{}, &domain.IntegrityError{Op: "permission lookup", Err: err}
	}
	if err != nil {
		return domain.Capabilities{}, fmt.Errorf("resolve permissions: %w", err)
	}
	return domain.Capabilities{Read: role.ReadCap, Write: role.WriteCap}, nil
}
