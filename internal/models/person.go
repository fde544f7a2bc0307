package models

import (
	"time"

	"gorm.io/gorm"
)

// Person represents a registered individual with login credentials.
// Content never references a Person directly; attribution always goes
// through the Owner entity.
type Person struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"` // stored lowercased
	Handle       string         `gorm:"uniqueIndex;size:100;not null" json:"handle"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	DisplayName  string         `gorm:"size:200" json:"display_name"`
	Bio          string         `gorm:"size:2000" json:"bio"`
	Avatar       string         `gorm:"size:500" json:"avatar"`
	SystemRole   string         `gorm:"size:20;default:user" json:"system_role"` // admin, user
	IsActive     bool           `json:"is_active"`
	LastLogin    *time.Time     `json:"last_login"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Person) TableName() string { return "people" }
