// Package store provides the persistence layer. SQL is the production
// implementation backed by GORM/MySQL; Mem is a mutex-guarded in-memory
// implementation with identical semantics, used by tests.
//
// Each consumer package declares the minimal interface it needs; both
// implementations here satisfy all of them. Every mutation that must be
// atomic (session replacement, balance change plus ledger append) runs as a
// single database transaction or conditional UPDATE so concurrent requests
// cannot produce lost updates.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"walletsvc/internal/domain"
)

// SQL is the GORM-backed store.
type SQL struct {
	db *gorm.DB
}

// NewSQL wraps an open GORM handle.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

// UserByUsername fetches a user by exact, case-sensitive username.
func (s *SQL) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	// BINARY forces a case-sensitive match despite MySQL's default collation.
	err := s.db.WithContext(ctx).Where("username = BINARY ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoSuchUser
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by username: %w", err)
	}
	return &user, nil
}

// UserByID fetches a user by id.
func (s *SQL) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user by id: %w", err)
	}
	return &user, nil
}

// RoleByID fetches a role by id.
func (s *SQL) RoleByID(ctx context.Context, id uint) (*domain.Role, error) {
	var role domain.Role
	err := s.db.WithContext(ctx).First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch role: %w", err)
	}
	return &role, nil
}

// CurrentSession returns the single live session row, or nil if none exists.
func (s *SQL) CurrentSession(ctx context.Context) (*domain.Session, error) {
	var sess domain.Session
	err := s.db.WithContext(ctx).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	return &sess, nil
}

// ReplaceSession enforces the single-live-session rule: any session owned by
// a different user is deleted, then the caller's session is created or its
// updated timestamp advanced. The whole exchange is one database transaction.
func (s *SQL) ReplaceSession(ctx context.Context, userID uint, now time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id <> ?", userID).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		var sess domain.Session
		err := tx.Where("user_id = ?", userID).First(&sess).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&domain.Session{UserID: userID, CreatedAt: now, UpdatedAt: now}).Error
		}
		if err != nil {
			return err
		}
		if now.After(sess.UpdatedAt) {
			return tx.Model(&sess).Update("updated_at", now).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// TouchSession advances the updated timestamp of the user's session. A stale
// clock (now not after the stored timestamp) leaves the row untouched.
func (s *SQL) TouchSession(ctx context.Context, userID uint, now time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("user_id = ? AND updated_at < ?", userID, now).
		Update("updated_at", now).Error
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// DeleteSession removes a session row. Deleting an absent id is not an error.
func (s *SQL) DeleteSession(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&domain.Session{}, id).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Balance returns the user's balance in cents.
func (s *SQL) Balance(ctx context.Context, userID uint) (int64, error) {
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// Credit adds cents to the user's balance and appends the matching deposit
// row in the same database transaction. A failed append rolls the balance
// back and is reported as an integrity violation.
func (s *SQL) Credit(ctx context.Context, userID uint, cents int64) (int64, error) {
	var newBalance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).
			Where("id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", cents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		t := domain.Transaction{UserID: userID, Type: domain.TxDeposit, Amount: cents}
		if err := tx.Create(&t).Error; err != nil {
			return &domain.IntegrityError{Op: "deposit ledger append", Err: err}
		}
		var user domain.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		newBalance = user.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit subtracts cents from the user's balance if funds allow, appending the
// matching withdraw row in the same transaction. The funds check and the
// decrement are a single conditional UPDATE, so two concurrent withdrawals
// cannot both pass the check against the same balance.
func (s *SQL) Debit(ctx context.Context, userID uint, cents int64) (int64, error) {
	var newBalance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).
			Where("id = ? AND balance >= ?", userID, cents).
			Update("balance", gorm.Expr("balance - ?", cents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var user domain.User
			if err := tx.First(&user, userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrUserNotFound
				}
				return err
			}
			return domain.ErrInsufficientFunds
		}
		t := domain.Transaction{UserID: userID, Type: domain.TxWithdraw, Amount: cents}
		if err := tx.Create(&t).Error; err != nil {
			return &domain.IntegrityError{Op: "withdraw ledger append", Err: err}
		}
		var user domain.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		newBalance = user.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// RecentTransactions returns up to limit transactions for the user, newest
// first.
func (s *SQL) RecentTransactions(ctx context.Context, userID uint, limit int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return txs, nil
}
