package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"walletsvc/internal/domain"
)

// Mem is a thread-safe in-memory store with the same semantics as SQL. It
// backs the package tests so every component can be exercised without a
// database.
type Mem struct {
	mu         sync.Mutex
	users      map[uint]*domain.User
	byUsername map[string]uint
	roles      map[uint]*domain.Role
	session    *domain.Session
	txs        []domain.Transaction
	nextUserID uint
	nextSessID uint
	nextTxID   uint

	// appendErr, when set, makes the next ledger append fail after the
	// balance change so callers can observe the rollback path.
	appendErr error
}

// NewMem returns an empty in-memory store.
func NewMem() *Mem {
	return &Mem{
		users:      make(map[uint]*domain.User),
		byUsername: make(map[string]uint),
		roles:      make(map[uint]*domain.Role),
	}
}

// AddRole inserts a role and returns its id.
func (m *Mem) AddRole(role domain.Role) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if role.ID == 0 {
		role.ID = uint(len(m.roles) + 1)
	}
	m.roles[role.ID] = &role
	return role.ID
}

// AddUser inserts a user and returns its id.
func (m *Mem) AddUser(user domain.User) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	user.ID = m.nextUserID
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = time.Now()
	}
	m.users[user.ID] = &user
	m.byUsername[user.Username] = user.ID
	return user.ID
}

// FailNextAppend arms a one-shot ledger append failure.
func (m *Mem) FailNextAppend(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr = err
}

func (m *Mem) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byUsername[username]
	if !ok {
		return nil, domain.ErrNoSuchUser
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Mem) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *Mem) RoleByID(ctx context.Context, id uint) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	cp := *role
	return &cp, nil
}

func (m *Mem) CurrentSession(ctx context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	return &cp, nil
}

func (m *Mem) ReplaceSession(ctx context.Context, userID uint, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.UserID != userID {
		m.session = nil
	}
	if m.session == nil {
		m.nextSessID++
		m.session = &domain.Session{ID: m.nextSessID, UserID: userID, CreatedAt: now, UpdatedAt: now}
		return nil
	}
	if now.After(m.session.UpdatedAt) {
		m.session.UpdatedAt = now
	}
	return nil
}

func (m *Mem) TouchSession(ctx context.Context, userID uint, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.UserID == userID && now.After(m.session.UpdatedAt) {
		m.session.UpdatedAt = now
	}
	return nil
}

func (m *Mem) DeleteSession(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil && m.session.ID == id {
		m.session = nil
	}
	return nil
}

func (m *Mem) Balance(ctx context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	return user.Balance, nil
}

func (m *Mem) Credit(ctx context.Context, userID uint, cents int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	user.Balance += cents
	if err := m.appendTx(userID, domain.TxDeposit, cents); err != nil {
		user.Balance -= cents
		return 0, err
	}
	return user.Balance, nil
}

func (m *Mem) Debit(ctx context.Context, userID uint, cents int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	if user.Balance < cents {
		return 0, domain.ErrInsufficientFunds
	}
	user.Balance -= cents
	if err := m.appendTx(userID, domain.TxWithdraw, cents); err != nil {
		user.Balance += cents
		return 0, err
	}
	return user.Balance, nil
}

// appendTx must be called with the mutex held.
func (m *Mem) appendTx(userID uint, txType string, cents int64) error {
	if m.appendErr != nil {
		err := m.appendErr
		m.appendErr = nil
		return &domain.IntegrityError{Op: txType + " ledger append", Err: err}
	}
	m.nextTxID++
	m.txs = append(m.txs, domain.Transaction{
		ID:        m.nextTxID,
		UserID:    userID,
		Type:      txType,
		Amount:    cents,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *Mem) RecentTransactions(ctx context.Context, userID uint, limit int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	// Newest first; ids are monotonic so they break timestamp ties.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
