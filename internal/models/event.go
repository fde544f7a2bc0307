package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is owned content with a time and a place.
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Owner       *Owner         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Summary     string         `gorm:"size:500" json:"summary"`
	Body        string         `gorm:"type:text" json:"body"`
	Location    string         `gorm:"size:500" json:"location"`
	StartsAt    time.Time      `gorm:"index;not null" json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at"`
	IsPublished bool           `json:"is_published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Event) TableName() string { return "events" }
