package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization is a named public entity that people join with a role.
// PrimaryOwnerID points at the personal Owner of the founding Person and
// is used for display attribution only, never for permission checks.
type Organization struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:200;not null" json:"name"`
	Slug           string         `gorm:"uniqueIndex;size:100;not null" json:"slug"` // stored lowercased
	Description    string         `gorm:"size:2000" json:"description"`
	Website        string         `gorm:"size:500" json:"website"`
	Avatar         string         `gorm:"size:500" json:"avatar"`
	PrimaryOwnerID uint           `gorm:"not null" json:"primary_owner_id"`
	IsPublic       bool           `json:"is_public"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Organization) TableName() string { return "organizations" }
