package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is owned content, optionally attached to exactly one parent
// (a Project or an Event, never both). A child Post's owner always
// equals the parent's owner at creation time.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OwnerID   uint           `gorm:"index;not null" json:"owner_id"`
	Owner     *Owner         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	ProjectID *uint          `gorm:"index" json:"project_id"`
	EventID   *uint          `gorm:"index" json:"event_id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string { return "posts" }

// HasParent reports whether the post is attached to a project or event.
func (p *Post) HasParent() bool {
	return p.ProjectID != nil || p.EventID != nil
}
