// Package wallet is the balance-mutation and transaction-append engine.
// Every balance change carries exactly one ledger entry, written in the same
// atomic unit by the store.
package wallet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"walletsvc/internal/cache"
	"walletsvc/internal/domain"
)

// Listing limits. A missing or non-positive limit falls back to the default.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

const listCacheTTL = 60 * time.Second

// Store is the slice of the persistence layer the ledger needs. Credit and
// Debit mutate the balance and append the ledger row as one atomic unit;
// Debit re-checks funds inside that unit.
type Store interface {
	Balance(ctx context.Context, userID uint) (int64, error)
	Credit(ctx context.Context, userID uint, cents int64) (int64, error)
	Debit(ctx context.Context, userID uint, cents int64) (int64, error)
	RecentTransactions(ctx context.Context, userID uint, limit int) ([]domain.Transaction, error)
}

// Ledger executes wallet operations. The cache is optional; when present it
// holds recent transaction listings and is invalidated on every mutation.
type Ledger struct {
	store Store
	cache cache.Cache
}

// NewLedger returns a Ledger. cache may be nil.
func NewLedger(store Store, c cache.Cache) *Ledger {
	return &Ledger{store: store, cache: c}
}

// Balance returns the user's balance in cents.
func (l *Ledger) Balance(ctx context.Context, userID uint) (int64, error) {
	return l.store.Balance(ctx, userID)
}

// Deposit adds the amount to the user's balance and returns the new balance.
// Negative amounts are normalized to their absolute value; zero is rejected.
func (l *Ledger) Deposit(ctx context.Context, userID uint, cents int64) (int64, error) {
	cents, err := normalizeAmount(cents)
	if err != nil {
		return 0, err
	}
	newBalance, err := l.store.Credit(ctx, userID, cents)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  cents,
			"error":   err.Error(),
		}).Error("Deposit failed")
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  cents,
		"type":    domain.TxDeposit,
	}).Info("Deposit transaction")
	l.invalidateListing(ctx, userID)
	return newBalance, nil
}

// Withdraw subtracts the amount from the user's balance and returns the new
// balance. Insufficient funds reject the operation with no state change.
func (l *Ledger) Withdraw(ctx context.Context, userID uint, cents int64) (int64, error) {
	cents, err := normalizeAmount(cents)
	if err != nil {
		return 0, err
	}
	newBalance, err := l.store.Debit(ctx, userID, cents)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  cents,
			"error":   err.Error(),
		}).Error("Withdraw failed")
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  cents,
		"type":    domain.TxWithdraw,
	}).Info("Withdraw transaction")
	l.invalidateListing(ctx, userID)
	return newBalance, nil
}

// ListTransactions returns up to limit transactions for the user, newest
// first. Non-positive limits use the default; oversized limits are capped.
func (l *Ledger) ListTransactions(ctx context.Context, userID uint, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if l.cache != nil {
		var cached []domain.Transaction
		found, err := l.cache.Get(ctx, listCacheKey(userID), &cached)
		if err == nil && found {
			return clip(cached, limit), nil
		}
	}
	txs, err := l.store.RecentTransactions(ctx, userID, MaxListLimit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if l.cache != nil {
		_ = l.cache.Set(ctx, listCacheKey(userID), txs, listCacheTTL)
	}
	return clip(txs, limit), nil
}

func normalizeAmount(cents int64) (int64, error) {
	if cents < 0 {
		cents = -cents
	}
	if cents == 0 {
		return 0, domain.ErrInvalidAmount
	}
	return cents, nil
}

func listCacheKey(userID uint) string {
	return "txhistory:user:" + strconv.FormatUint(uint64(userID), 10)
}

func clip(txs []domain.Transaction, limit int) []domain.Transaction {
	if len(txs) > limit {
		return txs[:limit]
	}
	return txs
}

func (l *Ledger) invalidateListing(ctx context.Context, userID uint) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, listCacheKey(userID)); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Failed to invalidate transaction cache")
	}
}
