package domain

import "time"

// Session Model: proof of a successful login. At most one row exists
// system-wide; logging in as another user replaces the current row.
type Session struct {
	ID        uint      `gorm:"primaryKey"` // Primary key
	UserID    uint      `gorm:"not null"`   // Owning user
	CreatedAt time.Time // Set on login
	UpdatedAt time.Time // Refreshed on deposit, withdraw and listing
}
