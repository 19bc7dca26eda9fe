package db

import (
	"fmt"  // Error formatting
	"time" // Entry timestamps

	"habit_tracker/internal/domain" // Importing domain models
	"habit_tracker/internal/utils"  // Password hashing

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// SeedPassword is the password every demo account is created with
const SeedPassword = "demo12345"

type seedHabit struct {
	owner       string   // Key into the seeded users
	name        string   // Habit name
	description string   // Habit description
	targetCount int      // Completions per day
	tags        []string // Tag names
	daysAgo     []int    // Days (relative to today) with one completion each
}

var seedTags = []domain.Tag{
	{Name: "Health", Color: "#10B981"},
	{Name: "Productivity", Color: "#3B82F6"},
	{Name: "Mindfulness", Color: "#8B5CF6"},
	{Name: "Fitness", Color: "#EF4444"},
	{Name: "Learning", Color: "#F59E0B"},
	{Name: "Personal", Color: "#EC4899"},
}

var seedHabits = []seedHabit{
	{owner: "demo", name: "Exercise", description: "Daily workout routine", targetCount: 1, tags: []string{"Health", "Fitness"}, daysAgo: []int{0, 1, 2, 3, 4, 5, 6}},
	{owner: "demo", name: "Read for 30 minutes", description: "Read books or articles", targetCount: 1, tags: []string{"Learning", "Personal"}, daysAgo: []int{1, 2, 3}},
	{owner: "demo", name: "Meditate", description: "10 minutes of mindfulness", targetCount: 1, tags: []string{"Mindfulness", "Health"}, daysAgo: []int{0, 2, 3, 5, 8, 9, 10, 15}},
	{owner: "demo", name: "Drink 8 glasses of water", description: "Stay hydrated throughout the day", targetCount: 8, tags: []string{"Health"}, daysAgo: []int{0, 0, 0, 0, 0, 0}},
	{owner: "john", name: "Code for 1 hour", description: "Practice programming skills", targetCount: 1, tags: []string{"Learning", "Productivity"}, daysAgo: []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
}

// Seed wipes every table and loads demo users, tags, habits and entries
func Seed(db *gorm.DB, hasher utils.PasswordHasher, now time.Time) error {
	digest, err := hasher.Hash(SeedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())

	return db.Transaction(func(tx *gorm.DB) error {
		// Clear existing data, children first
		for _, model := range []any{&domain.Entry{}, &domain.HabitTag{}, &domain.Habit{}, &domain.Tag{}, &domain.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}

		demoFirst, demoLast, johnFirst, johnLast := "Demo", "User", "John", "Doe"
		users := map[string]*domain.User{
			"demo": {Email: "demo@habittracker.com", Username: "demouser", Password: digest, FirstName: &demoFirst, LastName: &demoLast},
			"john": {Email: "john@example.com", Username: "johndoe", Password: digest, FirstName: &johnFirst, LastName: &johnLast},
		}
		for _, key := range []string{"demo", "john"} {
			if err := tx.Create(users[key]).Error; err != nil {
				return fmt.Errorf("create user %s: %w", key, err)
			}
		}

		tagIDs := make(map[string]string, len(seedTags))
		for _, t := range seedTags {
			tag := t
			if err := tx.Create(&tag).Error; err != nil {
				return fmt.Errorf("create tag %s: %w", tag.Name, err)
			}
			tagIDs[tag.Name] = tag.ID
		}

		entryCount := 0
		for _, sh := range seedHabits {
			description := sh.description
			habit := domain.Habit{
				UserID:      users[sh.owner].ID,
				Name:        sh.name,
				Description: &description,
				Frequency:   domain.FrequencyDaily,
				TargetCount: sh.targetCount,
				IsActive:    true,
			}
			if err := tx.Create(&habit).Error; err != nil {
				return fmt.Errorf("create habit %s: %w", sh.name, err)
			}
			for _, name := range sh.tags {
				if err := tx.Create(&domain.HabitTag{HabitID: habit.ID, TagID: tagIDs[name]}).Error; err != nil {
					return fmt.Errorf("tag habit %s: %w", sh.name, err)
				}
			}
			for i, days := range sh.daysAgo {
				completed := today.AddDate(0, 0, -days)
				if days == 0 && sh.targetCount > 1 {
					completed = time.Date(today.Year(), today.Month(), today.Day(), 8+i*2, 0, 0, 0, today.Location()) // Spread through the day
				}
				if err := tx.Create(&domain.Entry{HabitID: habit.ID, CompletionDate: completed}).Error; err != nil {
					return fmt.Errorf("log entry for %s: %w", sh.name, err)
				}
				entryCount++
			}
		}

		logrus.WithFields(logrus.Fields{
			"users":   len(users),
			"tags":    len(seedTags),
			"habits":  len(seedHabits),
			"entries": entryCount,
		}).Info("Database seeded")
		return nil
	})
}
