package db

import (
	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library

	"walletsvc/internal/auth"
	"walletsvc/internal/domain"
)

// Migrate creates or updates the schema and seeds the initial roles and
// users.
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&domain.User{}, &domain.Role{}, &domain.Session{}, &domain.Transaction{})
	if err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	if err := Seed(db); err != nil {
		logrus.Fatalf("seed failed: %v", err)
	}
	logrus.Info("Migration completed.")
}

// Seed inserts the admin and customer roles and the two starter users.
// Seeding is idempotent: existing users are left untouched.
func Seed(db *gorm.DB) error {
	adminRole := domain.Role{Name: "admin", ReadCap: true, WriteCap: true}
	if err := db.Where(domain.Role{Name: "admin"}).FirstOrCreate(&adminRole).Error; err != nil {
		return err
	}
	customerRole := domain.Role{Name: "customer", ReadCap: true, WriteCap: true}
	if err := db.Where(domain.Role{Name: "customer"}).FirstOrCreate(&customerRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Info("Seed users already exist, skipping")
		return nil
	}

	seeds := []struct {
		username string
		password string
		roleID   uint
		balance  int64
	}{
		{"admin", "admin", adminRole.ID, 10000},
		{"john", "john", customerRole.ID, 5000},
	}
	for _, s := range seeds {
		hash, err := auth.HashPassword(s.password)
		if err != nil {
			return err
		}
		user := domain.User{
			Username: s.username,
			Password: hash,
			RoleID:   s.roleID,
			Balance:  s.balance,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		logrus.WithField("username", s.username).Info("Seed user added")
	}
	return nil
}
