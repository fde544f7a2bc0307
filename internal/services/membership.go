package services

import (
	"errors"
	"fmt"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipService is the role authority: it answers "what may this
// person do inside this organization" and performs role mutations.
type MembershipService struct {
	db            *gorm.DB
	notifications Notifier
}

// Notifier is satisfied by the task queue; nil disables notifications.
type Notifier interface {
	Enqueue(task *NotificationTask) error
}

func NewMembershipService(db *gorm.DB, notifier Notifier) *MembershipService {
	return &MembershipService{db: db, notifications: notifier}
}

// RoleOf returns the Person's role within the Organization, or false
// when no relationship exists.
func (s *MembershipService) RoleOf(personID, organizationID uint) (models.Role, bool, error) {
	var membership models.Membership
	err := s.db.Joins("JOIN owners ON owners.id = memberships.owner_id").
		Where("owners.person_id = ? AND memberships.organization_id = ? AND owners.deleted_at IS NULL", personID, organizationID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return membership.Role, true, nil
}

// CanActAs reports whether the person may act as the organization
// (role MEMBER or above).
func (s *MembershipService) CanActAs(personID, organizationID uint) (bool, error) {
	role, ok, err := s.RoleOf(personID, organizationID)
	if err != nil || !ok {
		return false, err
	}
	return role.AtLeast(models.RoleMember), nil
}

// CanAdminister reports whether the person may administer the
// organization (ADMIN or OWNER).
func (s *MembershipService) CanAdminister(personID, organizationID uint) (bool, error) {
	role, ok, err := s.RoleOf(personID, organizationID)
	if err != nil || !ok {
		return false, err
	}
	return role.AtLeast(models.RoleAdmin), nil
}

type AddMemberRequest struct {
	PersonID uint        `json:"person_id" binding:"required"`
	Role     models.Role `json:"role"`
}

// AddMember gives a person a Membership in the organization. A person
// who already holds a live Membership is rejected with Conflict; role
// changes go through ChangeRole instead of silent promotion. A person
// rejoining after removal reuses their surviving organization-scoped
// Owner so earlier content attribution stays intact.
func (s *MembershipService) AddMember(requesterPersonID, organizationID uint, req *AddMemberRequest) (*models.Membership, error) {
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, response.NewBadRequest(fmt.Sprintf("unknown role %q", role))
	}

	requesterRole, ok, err := s.RoleOf(requesterPersonID, organizationID)
	if err != nil {
		return nil, err
	}
	if !ok || !requesterRole.AtLeast(models.RoleAdmin) {
		return nil, response.NewForbidden("admin role required to add members")
	}
	// Granting ADMIN or OWNER is reserved for OWNER holders.
	if role.AtLeast(models.RoleAdmin) && requesterRole != models.RoleOwner {
		return nil, response.NewForbidden("owner role required to grant admin or owner")
	}

	var org models.Organization
	if err := s.db.First(&org, organizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("organization not found")
		}
		return nil, err
	}
	var person models.Person
	if err := s.db.First(&person, req.PersonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("person not found")
		}
		return nil, err
	}

	var membership models.Membership
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var owner models.Owner
		err := tx.Where("person_id = ? AND organization_id = ?", req.PersonID, organizationID).
			First(&owner).Error
		switch {
		case err == nil:
			// The Owner outlives its Membership; only a live Membership
			// means the person is currently a member.
			var live int64
			if err := tx.Model(&models.Membership{}).
				Where("owner_id = ?", owner.ID).
				Count(&live).Error; err != nil {
				return err
			}
			if live > 0 {
				return response.NewConflict("person is already a member of this organization")
			}
			if owner.Status != models.OwnerStatusActive {
				if err := tx.Model(&owner).Update("status", models.OwnerStatusActive).Error; err != nil {
					return err
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			owner = models.Owner{
				PersonID:       req.PersonID,
				OrganizationID: &org.ID,
				Kind:           models.OwnerKindOrganization,
				Status:         models.OwnerStatusActive,
			}
			if err := tx.Create(&owner).Error; err != nil {
				return err
			}
		default:
			return err
		}

		membership = models.Membership{
			OwnerID:        owner.ID,
			OrganizationID: org.ID,
			Role:           role,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyRoleChange(&membership, fmt.Sprintf("you were added to %s as %s", org.Name, role))
	return &membership, nil
}

// ChangeRole mutates a member's role. Requires the requester to hold
// OWNER. Demoting the last OWNER is a Conflict; the membership rows are
// locked for the count-then-write so concurrent demotions cannot both
// pass the check.
func (s *MembershipService) ChangeRole(requesterPersonID, organizationID, targetOwnerID uint, newRole models.Role) (*models.Membership, error) {
	if !newRole.Valid() {
		return nil, response.NewBadRequest(fmt.Sprintf("unknown role %q", newRole))
	}

	requesterRole, ok, err := s.RoleOf(requesterPersonID, organizationID)
	if err != nil {
		return nil, err
	}
	if !ok || requesterRole != models.RoleOwner {
		return nil, response.NewForbidden("owner role required to change roles")
	}

	var membership models.Membership
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("owner_id = ? AND organization_id = ?", targetOwnerID, organizationID).
			First(&membership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("membership not found")
			}
			return err
		}

		if membership.Role == newRole {
			return nil
		}

		if membership.Role == models.RoleOwner && newRole != models.RoleOwner {
			if err := guardLastOwner(tx, organizationID); err != nil {
				return err
			}
		}

		membership.Role = newRole
		return tx.Save(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyRoleChange(&membership, fmt.Sprintf("your role is now %s", newRole))
	return &membership, nil
}

// RemoveMember deletes a Membership. The Owner row survives because
// published content may still reference it; the person simply loses the
// ability to act as the organization. The last OWNER cannot be removed.
func (s *MembershipService) RemoveMember(requesterPersonID, organizationID, targetOwnerID uint) error {
	requesterRole, ok, err := s.RoleOf(requesterPersonID, organizationID)
	if err != nil {
		return err
	}
	if !ok || !requesterRole.AtLeast(models.RoleAdmin) {
		return response.NewForbidden("admin role required to remove members")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var membership models.Membership
		err := lockForUpdate(tx).
			Where("owner_id = ? AND organization_id = ?", targetOwnerID, organizationID).
			First(&membership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("membership not found")
			}
			return err
		}

		// Removing an ADMIN/OWNER is reserved for OWNER holders.
		if membership.Role.AtLeast(models.RoleAdmin) && requesterRole != models.RoleOwner {
			return response.NewForbidden("owner role required to remove admins")
		}

		if membership.Role == models.RoleOwner {
			if err := guardLastOwner(tx, organizationID); err != nil {
				return err
			}
		}

		return tx.Delete(&membership).Error
	})
}

// lockForUpdate applies a SELECT ... FOR UPDATE row lock on dialects
// that support it. SQLite serializes writers on its own and rejects the
// FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// guardLastOwner fails with Conflict when the organization would be left
// without an OWNER membership. Callers hold row locks on the target row;
// the count here locks the remaining OWNER rows as well.
func guardLastOwner(tx *gorm.DB, organizationID uint) error {
	var owners int64
	err := lockForUpdate(tx.Model(&models.Membership{})).
		Where("organization_id = ? AND role = ?", organizationID, models.RoleOwner).
		Count(&owners).Error
	if err != nil {
		return err
	}
	if owners <= 1 {
		return response.NewConflict("cannot demote the last owner")
	}
	return nil
}

// MemberView pairs a membership with the member's display identity.
type MemberView struct {
	OwnerID  uint        `json:"owner_id"`
	PersonID uint        `json:"person_id"`
	Handle   string      `json:"handle"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

// ListMembers returns the organization's memberships with identities.
func (s *MembershipService) ListMembers(organizationID uint) ([]MemberView, error) {
	var views []MemberView
	err := s.db.Model(&models.Membership{}).
		Select("memberships.owner_id, owners.person_id, people.handle, people.display_name AS name, memberships.role").
		Joins("JOIN owners ON owners.id = memberships.owner_id").
		Joins("JOIN people ON people.id = owners.person_id").
		Where("memberships.organization_id = ?", organizationID).
		Order("memberships.created_at ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *MembershipService) notifyRoleChange(membership *models.Membership, msg string) {
	if s.notifications == nil || membership == nil {
		return
	}
	task := &NotificationTask{
		Kind:             models.NotificationKindRoleChange,
		RecipientOwnerID: membership.OwnerID,
		Message:          msg,
	}
	if err := s.notifications.Enqueue(task); err != nil {
		logError("membership", "notify", err)
	}
}
