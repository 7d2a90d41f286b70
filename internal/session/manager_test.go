package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"walletsvc/internal/domain"
	"walletsvc/internal/store"
)

// newTestManager returns a manager whose clock starts at base and can be
// moved by the test.
func newTestManager(m *store.Mem) (*Manager, *time.Time) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	mgr := NewManager(m, time.Hour)
	mgr.now = func() time.Time { return now }
	return mgr, &now
}

func TestValidateWithoutSession(t *testing.T) {
	mgr, _ := newTestManager(store.NewMem())

	v, err := mgr.Validate(context.Background())
	require.NoError(t, err)
	require.False(t, v.Valid)
	require.Equal(t, domain.ReasonNotAuthenticated, v.Reason)
}

func TestValidateFreshSession(t *testing.T) {
	m := store.NewMem()
	mgr, now := newTestManager(m)
	ctx := context.Background()

	require.NoError(t, mgr.CreateOrRefresh(ctx, 7))
	*now = now.Add(59 * time.Minute)

	v, err := mgr.Validate(ctx)
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.Equal(t, uint(7), v.UserID)
	require.NotZero(t, v.SessionID)
}

func TestValidateExpiredSessionIsDeleted(t *testing.T) {
	m := store.NewMem()
	mgr, now := newTestManager(m)
	ctx := context.Background()

	require.NoError(t, mgr.CreateOrRefresh(ctx, 7))
	*now = now.Add(time.Hour) // exactly the window boundary is already stale

	v, err := mgr.Validate(ctx)
	require.NoError(t, err)
	require.False(t, v.Valid)
	require.Equal(t, domain.ReasonExpired, v.Reason)

	sess, err := m.CurrentSession(ctx)
	require.NoError(t, err)
	require.Nil(t, sess, "expired session must be deleted during validation")
}

func TestCreateOrRefreshReplacesForeignSession(t *testing.T) {
	m := store.NewMem()
	mgr, _ := newTestManager(m)
	ctx := context.Background()

	require.NoError(t, mgr.CreateOrRefresh(ctx, 1))
	require.NoError(t, mgr.CreateOrRefresh(ctx, 2))

	sess, err := m.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, uint(2), sess.UserID, "logging in as another user replaces the session")
}

func TestCreateOrRefreshExtendsOwnSession(t *testing.T) {
	m := store.NewMem()
	mgr, now := newTestManager(m)
	ctx := context.Background()

	require.NoError(t, mgr.CreateOrRefresh(ctx, 1))
	first, err := m.CurrentSession(ctx)
	require.NoError(t, err)

	*now = now.Add(30 * time.Minute)
	require.NoError(t, mgr.CreateOrRefresh(ctx, 1))

	second, err := m.CurrentSession(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "refresh keeps the same session row")
	require.True(t, second.UpdatedAt.After(first.UpdatedAt))
	require.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestTouchExtendsFreshness(t *testing.T) {
	m := store.NewMem()
	mgr, now := newTestManager(m)
	ctx := context.Background()

	require.NoError(t, mgr.CreateOrRefresh(ctx, 1))
	*now = now.Add(50 * time.Minute)
	require.NoError(t, mgr.Touch(ctx, 1))
	*now = now.Add(50 * time.Minute)

	// 100 minutes after login, but only 50 since the touch.
	v, err := mgr.Validate(ctx)
	require.NoError(t, err)
	require.True(t, v.Valid)
}

func TestDeleteIsIdempotent(t *testing.T) {
	m := store.NewMem()
	mgr, _ := newTestManager(m)
	ctx := context.Background()

	require.NoError(t, mgr.CreateOrRefresh(ctx, 1))
	v, err := mgr.Validate(ctx)
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, v.SessionID))
	require.NoError(t, mgr.Delete(ctx, v.SessionID))

	after, err := mgr.Validate(ctx)
	require.NoError(t, err)
	require.False(t, after.Valid)
	require.Equal(t, domain.ReasonNotAuthenticated, after.Reason)
}
