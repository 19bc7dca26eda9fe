package domain

import (
	"time" // Time for timestamps

	"github.com/google/uuid" // UUID generation
	"gorm.io/gorm"           // GORM ORM library
)

// DefaultTagColor is the neutral gray used when a tag is created without a color
const DefaultTagColor = "#6B7280"

// Tag is a global label shared by every user's habits
type Tag struct {
	ID        string     `gorm:"type:char(36);primaryKey" json:"id"`                     // Primary key (UUID)
	Name      string     `gorm:"size:50;uniqueIndex;not null" json:"name"`               // Unique tag name
	Color     string     `gorm:"size:7;not null;default:'#6B7280'" json:"color"`         // #RRGGBB
	HabitTags []HabitTag `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Habit associations
	CreatedAt time.Time  `json:"createdAt"`                                              // Creation timestamp
	UpdatedAt time.Time  `json:"updatedAt"`                                              // Update timestamp
}

// BeforeCreate assigns a UUID and the default color
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString() // Generate UUID
	}
	if t.Color == "" {
		t.Color = DefaultTagColor // Neutral gray
	}
	return nil
}

// HabitTag associates a habit with a tag. Nothing at the storage layer
// stops a pair from being inserted twice; callers de-duplicate.
type HabitTag struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`          // Primary key (UUID)
	HabitID   string    `gorm:"type:char(36);not null;index" json:"habitId"` // Foreign key to Habit
	TagID     string    `gorm:"type:char(36);not null;index" json:"tagId"`   // Foreign key to Tag
	CreatedAt time.Time `json:"createdAt"`                                   // Creation timestamp
}

// BeforeCreate assigns a UUID when the caller did not set one
func (ht *HabitTag) BeforeCreate(tx *gorm.DB) error {
	if ht.ID == "" {
		ht.ID = uuid.NewString() // Generate UUID
	}
	return nil
}
