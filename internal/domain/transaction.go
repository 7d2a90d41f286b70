package domain

import "time"

// Transaction types
const (
	TxDeposit  = "deposit"
	TxWithdraw = "withdraw"
)

// Transaction Model: append-only ledger entry. Exactly one row is written per
// successful balance mutation, in the same unit of work as the mutation.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`          // Primary key
	UserID    uint      `gorm:"index;not null" json:"user_id"` // Owning user
	Type      string    `gorm:"not null" json:"type"`          // deposit or withdraw
	Amount    int64     `gorm:"not null" json:"amount"`        // Amount in cents, always positive
	CreatedAt time.Time `json:"created_at"`
}
