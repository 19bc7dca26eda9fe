package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// User Model
type User struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`                     // Primary key (UUID)
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`             // Unique email
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`           // Unique username
	Password  string    `gorm:"size:255;not null" json:"-"`                             // Hashed password, never serialized
	FirstName *string   `gorm:"size:50" json:"firstName"`                               // Optional first name
	LastName  *string   `gorm:"size:50" json:"lastName"`                                // Optional last name
	Habits    []Habit   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // One-to-many relationship with Habit
	CreatedAt time.Time `json:"createdAt"`                                              // Creation timestamp
	UpdatedAt time.Time `json:"updatedAt"`                                              // Update timestamp
}

// BeforeCreate assigns a UUID when the caller did not set one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
