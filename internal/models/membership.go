package models

import (
	"time"
)

// Role is a Person's role within an Organization, attached to their
// organization-scoped Owner. The set is small and fixed.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleMember   Role = "member"
	RoleFollower Role = "follower"
)

var roleRank = map[Role]int{
	RoleFollower: 1,
	RoleMember:   2,
	RoleAdmin:    3,
	RoleOwner:    4,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// Membership links exactly one organization-scoped Owner to a role.
// One row per Owner; the row's OrganizationID must equal the Owner's.
// An Organization always retains at least one Membership with RoleOwner.
// Rows are hard-deleted on removal: the unique index on OwnerID must not
// see stale rows, or the Owner could never rejoin the organization.
type Membership struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	OwnerID        uint          `gorm:"uniqueIndex;not null" json:"owner_id"`
	Owner          *Owner        `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	OrganizationID uint          `gorm:"index;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Role           Role          `gorm:"size:20;default:follower" json:"role"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }
