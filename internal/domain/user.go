package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey"`         // Primary key
	Username     string    `gorm:"unique;not null"`    // Unique username, matched case-sensitively
	Password     string    `gorm:"not null" json:"-"`  // Bcrypt hash, never logged or serialized
	RoleID       uint      `gorm:"not null"`           // Foreign key to Role
	Balance      int64     `gorm:"not null;default:0"` // Balance in cents
	RegisteredAt time.Time `gorm:"autoCreateTime"`     // Set at provisioning time
}
