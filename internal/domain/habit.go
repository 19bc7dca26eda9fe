package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// Frequency values accepted for a habit
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Habit Model
type Habit struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`                     // Primary key (UUID)
	UserID      string     `gorm:"type:char(36);not null;index" json:"userId"`             // Foreign key to User, immutable
	Name        string     `gorm:"size:100;not null" json:"name"`                          // Habit name
	Description *string    `gorm:"type:text" json:"description"`                           // Optional description
	Frequency   string     `gorm:"size:20;not null" json:"frequency"`                      // daily, weekly, monthly
	TargetCount int        `gorm:"not null;default:1" json:"targetCount"`                  // Completions per period
	IsActive    bool       `gorm:"not null;default:true" json:"isActive"`                  // Inactive habits cannot be completed
	Entries     []Entry    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Completion records
	HabitTags   []HabitTag `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Tag associations
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`                                 // Creation timestamp
	UpdatedAt   time.Time  `json:"updatedAt"`                                              // Update timestamp
}

// BeforeCreate assigns a UUID when the caller did not set one
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
