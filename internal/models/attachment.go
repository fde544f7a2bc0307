package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment records a stored media object belonging to a Project or an
// Event. Upload and download are handled by an external storage
// collaborator; this table only tracks the storage key so that deleting
// the parent can release the object.
type Attachment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OwnerID    uint           `gorm:"index;not null" json:"owner_id"`
	ProjectID  *uint          `gorm:"index" json:"project_id"`
	EventID    *uint          `gorm:"index" json:"event_id"`
	StorageKey string         `gorm:"uniqueIndex;size:64;not null" json:"storage_key"`
	FileName   string         `gorm:"size:255" json:"file_name"`
	MimeType   string         `gorm:"size:100" json:"mime_type"`
	SizeBytes  int64          `json:"size_bytes"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Attachment) TableName() string { return "attachments" }
