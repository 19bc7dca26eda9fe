// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"path/filepath" // Database file under the test's temp dir
	"testing"       // testing.TB for helpers

	"habit_tracker/internal/config" // Custom import path (Config)
	"habit_tracker/internal/db"     // Custom import path (Database)

	"gorm.io/gorm" // GORM ORM library
)

// New returns a migrated database stored under t.TempDir. Foreign keys are
// enforced, so cascade rules behave as they do on MySQL.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		AppStage:  config.StageTest,
		DBDriver:  "sqlite",
		DBPath:    filepath.Join(t.TempDir(), "habits.db"),
		DBPoolMin: 1,
		DBPoolMax: 4,
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
