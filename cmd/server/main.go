package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library

	"walletsvc/internal/api"
	"walletsvc/internal/auth"
	"walletsvc/internal/cache"
	"walletsvc/internal/config"
	"walletsvc/internal/gate"
	"walletsvc/internal/perms"
	"walletsvc/internal/session"
	"walletsvc/internal/store"
	"walletsvc/internal/wallet"
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig()

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire the core: one store behind every component, redis only as a
	// listing cache.
	sqlStore := store.NewSQL(db)
	g := gate.New(
		auth.New(sqlStore),
		session.NewManager(sqlStore, cfg.SessionWindow),
		perms.NewResolver(sqlStore),
		wallet.NewLedger(sqlStore, cache.NewRedis(redisClient)),
	)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/login", api.LoginHandler(g))
	r.POST("/auth/logout", api.LogoutHandler(g))

	// Wallet routes; the gate enforces session and capability checks
	r.GET("/users/balance", api.BalanceHandler(g))
	r.POST("/wallet/deposit", api.DepositHandler(g))
	r.POST("/wallet/withdraw", api.WithdrawHandler(g))
	r.GET("/wallet/list", api.TransactionsHandler(g))

	log.Println("Server running on " + cfg.AppPort)
	r.Run(":" + cfg.AppPort)
}
