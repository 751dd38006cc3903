package model

import "time"

// User is created either by credential signup (PasswordHash set) or by the
// first Google sign-in (GoogleID set). Identity fields are never updated.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	GoogleID     string    `gorm:"size:255;index" json:"-"`
	Name         string    `gorm:"size:100" json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}
