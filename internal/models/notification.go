package models

import "time"

// Notification kinds
const (
	NotificationKindFollow     = "follow"
	NotificationKindMessage    = "message"
	NotificationKindRoleChange = "role_change"
)

// Notification is a materialized in-app notification addressed to an
// Owner. Rows are written by the notification worker, not by request
// handlers.
type Notification struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	RecipientOwnerID uint       `gorm:"index;not null" json:"recipient_owner_id"`
	ActorOwnerID     *uint      `json:"actor_owner_id"`
	Kind             string     `gorm:"size:30;index;not null" json:"kind"`
	Message          string     `gorm:"size:500" json:"message"`
	// Nullable so rows without a dedupe key never collide on the index.
	DedupeKey *string    `gorm:"uniqueIndex;size:64" json:"-"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
