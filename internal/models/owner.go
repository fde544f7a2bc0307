package models

import (
	"time"

	"gorm.io/gorm"
)

// OwnerKind discriminates the two shapes an Owner can take. Display and
// formatting logic switches on the kind rather than probing optional fields.
type OwnerKind string

const (
	OwnerKindPerson       OwnerKind = "person"
	OwnerKindOrganization OwnerKind = "organization"
)

const (
	OwnerStatusActive   = "active"
	OwnerStatusDisabled = "disabled"
)

// Owner is the unifying capacity-to-act entity. Every piece of content,
// every follow edge and every message references an Owner id, never a
// Person or Organization id directly.
//
// Invariants:
//   - exactly one Owner per Person has OrganizationID == nil (the personal Owner)
//   - at most one Owner exists per (PersonID, OrganizationID) pair
//
// The composite unique index enforces the second invariant at the database
// level; the first is enforced by the registration and organization-creation
// transactions (SQL unique indexes treat NULLs as distinct).
type Owner struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PersonID       uint           `gorm:"uniqueIndex:idx_person_org;not null" json:"person_id"`
	Person         *Person        `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	OrganizationID *uint          `gorm:"uniqueIndex:idx_person_org" json:"organization_id"`
	Organization   *Organization  `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Kind           OwnerKind      `gorm:"size:20;not null" json:"kind"`
	Status         string         `gorm:"size:20;default:active" json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Owner) TableName() string { return "owners" }

// IsPersonal reports whether this is the Person's personal Owner.
func (o *Owner) IsPersonal() bool {
	return o.OrganizationID == nil
}
