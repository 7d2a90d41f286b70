package gate_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"walletsvc/internal/auth"
	"walletsvc/internal/domain"
	"walletsvc/internal/gate"
	"walletsvc/internal/perms"
	"walletsvc/internal/session"
	"walletsvc/internal/store"
	"walletsvc/internal/wallet"
)

type fixture struct {
	gate  *gate.Gate
	store *store.Mem
	admin uint
	john  uint
}

// newFixture wires the full core over the in-memory store with the seed
// users: admin/admin (read+write, 100.00) and john/john (read-only, 50.00).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := store.NewMem()
	rw := m.AddRole(domain.Role{Name: "admin", ReadCap: true, WriteCap: true})
	ro := m.AddRole(domain.Role{Name: "viewer", ReadCap: true, WriteCap: false})

	adminHash, err := auth.HashPassword("admin")
	require.NoError(t, err)
	johnHash, err := auth.HashPassword("john")
	require.NoError(t, err)
	admin := m.AddUser(domain.User{Username: "admin", Password: adminHash, RoleID: rw, Balance: 10000})
	john := m.AddUser(domain.User{Username: "john", Password: johnHash, RoleID: ro, Balance: 5000})

	g := gate.New(
		auth.New(m),
		session.NewManager(m, time.Hour),
		perms.NewResolver(m),
		wallet.NewLedger(m, nil),
	)
	return &fixture{gate: g, store: m, admin: admin, john: john}
}

func (f *fixture) login(t *testing.T, username, password string) gate.Envelope {
	t.Helper()
	env, err := f.gate.Login(context.Background(), username, password)
	require.NoError(t, err)
	return env
}

func TestLoginRejections(t *testing.T) {
	f := newFixture(t)

	env := f.login(t, "nobody", "admin")
	require.Equal(t, http.StatusUnauthorized, env.Code)
	require.Equal(t, domain.ReasonNoSuchUser, env.Reason)
	require.False(t, env.Matched)

	env = f.login(t, "admin", "wrong")
	require.Equal(t, http.StatusForbidden, env.Code)
	require.Equal(t, domain.ReasonBadPassword, env.Reason)
	require.False(t, env.Matched)

	// Failed logins never open a session.
	sess, err := f.store.CurrentSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestProtectedOperationsRequireSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, call := range map[string]func() (gate.Envelope, error){
		"balance":  func() (gate.Envelope, error) { return f.gate.Balance(ctx) },
		"deposit":  func() (gate.Envelope, error) { return f.gate.Deposit(ctx, 100) },
		"withdraw": func() (gate.Envelope, error) { return f.gate.Withdraw(ctx, 100) },
		"list":     func() (gate.Envelope, error) { return f.gate.Transactions(ctx, 10) },
		"logout":   func() (gate.Envelope, error) { return f.gate.Logout(ctx) },
	} {
		env, err := call()
		require.NoError(t, err, name)
		require.Equal(t, http.StatusUnauthorized, env.Code, name)
		require.Equal(t, domain.ReasonNotAuthenticated, env.Reason, name)
	}
}

func TestExpiredSessionIsRejectedAndDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Plant a session last refreshed two hours ago.
	require.NoError(t, f.store.ReplaceSession(ctx, f.admin, time.Now().Add(-2*time.Hour)))

	env, err := f.gate.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, env.Code)
	require.Equal(t, domain.ReasonExpired, env.Reason)

	sess, err := f.store.CurrentSession(ctx)
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestWriteOperationsNeedWriteCapability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	env := f.login(t, "john", "john")
	require.True(t, env.Matched)

	env, err := f.gate.Deposit(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, env.Code)
	require.Equal(t, domain.ReasonForbidden, env.Reason)

	env, err = f.gate.Withdraw(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, env.Code)

	// Balance stays readable and untouched.
	env, err = f.gate.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, env.Code)
	require.Equal(t, "50.00", env.Balance)
}

func TestLoginReplacesOtherUsersSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.login(t, "admin", "admin")
	f.login(t, "john", "john")

	sess, err := f.store.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, f.john, sess.UserID)

	// The admin's calls now fail: their session is gone and john's session
	// does not carry admin's identity.
	env, err := f.gate.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, "50.00", env.Balance)
}

func TestDepositNegativeAmountBehavesLikePositive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "admin", "admin")

	env, err := f.gate.Deposit(ctx, -5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, env.Code)
	require.Equal(t, "150.00", env.NewBalance)
}

func TestDepositZeroAmountRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "admin", "admin")

	env, err := f.gate.Deposit(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, env.Code)
	require.Equal(t, domain.ReasonInvalidAmount, env.Reason)

	env, err = f.gate.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, "100.00", env.Balance)
}

// TestAccountLifecycle walks the whole flow: login, balance, deposit,
// over-withdraw, listing, logout.
func TestAccountLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	env := f.login(t, "admin", "admin")
	require.Equal(t, http.StatusOK, env.Code)
	require.True(t, env.Matched)
	require.Equal(t, f.admin, env.UserID)

	env, err := f.gate.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, "100.00", env.Balance)

	env, err = f.gate.Deposit(ctx, 5000)
	require.NoError(t, err)
	require.Equal(t, "150.00", env.NewBalance)

	env, err = f.gate.Withdraw(ctx, 20000)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, env.Code)
	require.Equal(t, domain.ReasonInsufficientFunds, env.Reason)

	env, err = f.gate.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, "150.00", env.Balance, "rejected withdrawal must not move the balance")

	env, err = f.gate.Transactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, env.Transactions, 1)
	require.Equal(t, domain.TxDeposit, env.Transactions[0].Type)
	require.Equal(t, int64(5000), env.Transactions[0].Amount)

	env, err = f.gate.Logout(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, env.Code)
	require.Equal(t, "successful", env.Logout)

	env, err = f.gate.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, env.Code)
}
