package domain

import (
	"time" // Time for timestamps

	"github.com/google/uuid" // UUID generation
	"gorm.io/gorm"           // GORM ORM library
)

// Entry is one recorded completion of a habit
type Entry struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`          // Primary key (UUID)
	HabitID        string    `gorm:"type:char(36);not null;index" json:"habitId"` // Foreign key to Habit
	CompletionDate time.Time `gorm:"not null;index" json:"completionDate"`        // When the habit was done
	Note           *string   `gorm:"type:text" json:"note"`                       // Optional note
	CreatedAt      time.Time `json:"createdAt"`                                   // Creation timestamp
}

// BeforeCreate fills the id and defaults the completion time to now
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString() // Generate UUID
	}
	if e.CompletionDate.IsZero() {
		e.CompletionDate = time.Now() // Completed now
	}
	return nil
}
