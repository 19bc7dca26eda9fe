package db

import (
	"fmt"  // Error formatting
	"time" // Connection lifetimes

	"habit_tracker/internal/config" // Application configuration

	"github.com/glebarez/sqlite" // Pure Go SQLite driver for GORM
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM query logger
)

// Open connects to the configured database and sizes its connection pool.
// The returned handle is the single pool for the process.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	level := logger.Warn // Only slow queries and errors outside development
	if cfg.AppStage == config.StageDev {
		level = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,                          // Map driver errors to gorm.ErrDuplicatedKey and friends
		Logger:         logger.Default.LogMode(level), // Query logging
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBPoolMin)       // Keep the minimum pool warm
	sqlDB.SetMaxOpenConns(cfg.DBPoolMax)       // Cap concurrent connections
	sqlDB.SetConnMaxLifetime(30 * time.Minute) // Recycle long-lived connections
	logrus.WithFields(logrus.Fields{
		"driver":   cfg.DBDriver,
		"pool_min": cfg.DBPoolMin,
		"pool_max": cfg.DBPoolMax,
	}).Info("Database connected")
	return gdb, nil
}
