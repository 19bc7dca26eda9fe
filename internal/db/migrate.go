package db

import (
	"habit_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table in foreign key order
var Models = []any{
	&domain.User{},
	&domain.Habit{},
	&domain.Entry{},
	&domain.Tag{},
	&domain.HabitTag{},
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
