package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is Owner-to-Owner direct mail. The sender is always the
// session's active Owner at send time.
type Message struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SenderOwnerID    uint           `gorm:"index;not null" json:"sender_owner_id"`
	SenderOwner      *Owner         `gorm:"foreignKey:SenderOwnerID" json:"sender_owner,omitempty"`
	RecipientOwnerID uint           `gorm:"index;not null" json:"recipient_owner_id"`
	RecipientOwner   *Owner         `gorm:"foreignKey:RecipientOwnerID" json:"recipient_owner,omitempty"`
	Subject          string         `gorm:"size:200" json:"subject"`
	Body             string         `gorm:"type:text;not null" json:"body"`
	ReadAt           *time.Time     `json:"read_at"`
	CreatedAt        time.Time      `json:"created_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Message) TableName() string { return "messages" }
