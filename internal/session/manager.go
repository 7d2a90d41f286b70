// Package session owns the lifecycle of the single live session: create,
// refresh, validate, expire, delete. Validity is recomputed from the stored
// timestamp on every call and never cached.
package session

import (
	"context"
	"fmt"
	"time"

	"walletsvc/internal/domain"
)

// DefaultWindow is the session freshness window: a session is valid while
// less than this much time has passed since it was last refreshed.
const DefaultWindow = time.Hour

// Store is the slice of the persistence layer the manager needs. All
// mutations are atomic in the store.
type Store interface {
	CurrentSession(ctx context.Context) (*domain.Session, error)
	ReplaceSession(ctx context.Context, userID uint, now time.Time) error
	TouchSession(ctx context.Context, userID uint, now time.Time) error
	DeleteSession(ctx context.Context, id uint) error
}

// Validity is the outcome of a session check. SessionID and UserID are set
// only when Valid is true.
type Validity struct {
	Valid     bool
	SessionID uint
	UserID    uint
	Reason    string
}

// Manager drives the session state machine.
type Manager struct {
	store  Store
	window time.Duration
	now    func() time.Time
}

// NewManager returns a Manager with the given freshness window. A zero or
// negative window falls back to DefaultWindow.
func NewManager(store Store, window time.Duration) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Manager{store: store, window: window, now: time.Now}
}

// CreateOrRefresh records a successful login. Any session belonging to a
// different user is removed, then the caller's session is created, or its
// freshness extended if it already exists.
func (m *Manager) CreateOrRefresh(ctx context.Context, userID uint) error {
	if err := m.store.ReplaceSession(ctx, userID, m.now()); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Validate checks the current session against the freshness window. An
// expired session is deleted as a side effect and reported as invalid; an
// absent session is reported as not authenticated.
func (m *Manager) Validate(ctx context.Context) (Validity, error) {
	sess, err := m.store.CurrentSession(ctx)
	if err != nil {
		return Validity{}, fmt.Errorf("validate session: %w", err)
	}
	if sess == nil {
		return Validity{Reason: domain.ReasonNotAuthenticated}, nil
	}
	if m.now().Sub(sess.UpdatedAt) >= m.window {
		if err := m.store.DeleteSession(ctx, sess.ID); err != nil {
			return Validity{}, fmt.Errorf("expire session: %w", err)
		}
		return Validity{Reason: domain.ReasonExpired}, nil
	}
	return Validity{Valid: true, SessionID: sess.ID, UserID: sess.UserID}, nil
}

// Touch extends the session's freshness after a successful operation.
func (m *Manager) Touch(ctx context.Context, userID uint) error {
	if err := m.store.TouchSession(ctx, userID, m.now()); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting an already-absent session is a no-op.
func (m *Manager) Delete(ctx context.Context, sessionID uint) error {
	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
