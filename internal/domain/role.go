package domain

// Role Model: a named capability bundle. The role set is small (admin,
// customer) but a new role only needs a row, not code.
type Role struct {
	ID       uint   `gorm:"primaryKey"`      // Primary key
	Name     string `gorm:"unique;not null"` // Role name
	ReadCap  bool   `gorm:"not null"`        // Read capability flag
	WriteCap bool   `gorm:"not null"`        // Write capability flag
}

// Capabilities is the resolved permission set for one user.
type Capabilities struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}
