package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is owned content published by an Owner (person or organization).
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Owner       *Owner         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Summary     string         `gorm:"size:500" json:"summary"`
	Body        string         `gorm:"type:text" json:"body"`
	Website     string         `gorm:"size:500" json:"website"`
	IsPublished bool           `json:"is_published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
