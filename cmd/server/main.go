package main

import (
	"context" // context package is needed for Redis operations
	"time"    // Redis ping timeout

	"habit_tracker/internal/api"     // HTTP handlers and router
	"habit_tracker/internal/config"  // Custom package for configuration
	"habit_tracker/internal/db"      // Database connection
	"habit_tracker/internal/service" // Use-cases
	"habit_tracker/internal/utils"   // Tokens, passwords, cache, logging

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Setup logger
	if err := utils.SetupLogger(cfg.LogLevel, cfg.IsProd); err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	// Connect to the database and bring the schema up to date
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}

	// Redis is optional; without it tag reads go straight to the database
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_, err = redisClient.Ping(ctx).Result() // Test Redis connection
		cancel()
		if err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		logrus.WithField("addr", cfg.RedisAddr).Info("Tag cache enabled")
	}
	cache := utils.NewCache(redisClient)

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := utils.NewPasswordHasher(cfg.BcryptRounds)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Services{
		Auth:   service.NewAuthService(gdb, tokens, hasher),
		Habits: service.NewHabitService(gdb, cache),
		Tags:   service.NewTagService(gdb, cache),
		Tokens: tokens,
	}, !cfg.IsProd)

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"port":  cfg.AppPort,
		"stage": cfg.AppStage,
	}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
