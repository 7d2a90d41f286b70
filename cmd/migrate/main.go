package main

import (
	"walletsvc/internal/config"
	"walletsvc/internal/db"
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig()
	db.Migrate(cfg.DSN())
}
