package main

import (
	"time" // Seed reference time

	"habit_tracker/internal/config" // Custom import path (Config)
	"habit_tracker/internal/db"     // Custom import path (Database)
	"habit_tracker/internal/utils"  // Password hashing and logging

	"github.com/alecthomas/kong" // Command line parsing
	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// UpCmd creates or updates the schema
type UpCmd struct{}

// Run migrates the schema
func (UpCmd) Run(gdb *gorm.DB) error {
	return db.Migrate(gdb)
}

// SeedCmd replaces all data with the demo dataset
type SeedCmd struct{}

// Run migrates, then loads the demo users, tags, habits and entries
func (SeedCmd) Run(gdb *gorm.DB, cfg *config.Config) error {
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	if err := db.Seed(gdb, utils.NewPasswordHasher(cfg.BcryptRounds), time.Now()); err != nil {
		return err
	}
	logrus.WithField("password", db.SeedPassword).Info("Demo accounts demo@habittracker.com and john@example.com are ready")
	return nil
}

var cli struct {
	Up   UpCmd   `cmd:"" default:"1" help:"Create or update the database schema."`
	Seed SeedCmd `cmd:"" help:"Wipe all data and load the demo dataset."`
}

// Main entry point for migration
func main() {
	ctx := kong.Parse(&cli,
		kong.Name("migrate"),
		kong.Description("Habit tracker database schema and demo data"),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if err := utils.SetupLogger(cfg.LogLevel, cfg.IsProd); err != nil {
		logrus.Fatalf("failed to configure logging: %v", err)
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	ctx.FatalIfErrorf(ctx.Run(gdb, cfg))
}
