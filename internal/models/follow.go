package models

import "time"

// Follow is a directed Owner-to-Owner edge, unique per ordered pair.
// Either side may be a person-kind or organization-kind Owner.
// Self-loops are rejected at the service layer.
type Follow struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FollowerOwnerID  uint      `gorm:"uniqueIndex:idx_follower_following;not null" json:"follower_owner_id"`
	FollowingOwnerID uint      `gorm:"uniqueIndex:idx_follower_following;not null" json:"following_owner_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
