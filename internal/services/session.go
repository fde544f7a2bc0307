package services

import (
	"errors"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

// SessionContext is the validated acting identity for one request.
// Every mutating operation receives one; content is attributed to
// ActiveOwnerID and nothing else.
type SessionContext struct {
	PersonID      uint
	ActiveOwnerID uint
	ActiveOwner   *models.Owner
}

// SessionService resolves a person plus an optional requested active
// owner into a SessionContext. Resolution is a pure read; the session
// token is only ever rewritten by the actor-switching commit step.
type SessionService struct {
	db     *gorm.DB
	owners *OwnerService
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db, owners: NewOwnerService(db)}
}

// Resolve computes the SessionContext for a read path. A missing or
// invalid requested owner silently falls back to the personal Owner;
// only explicit switch requests reject (see ValidateSwitch).
func (s *SessionService) Resolve(personID uint, requestedOwnerID *uint) (*SessionContext, error) {
	if requestedOwnerID != nil {
		owner, err := s.validateOwnerFor(personID, *requestedOwnerID)
		if err == nil {
			return &SessionContext{PersonID: personID, ActiveOwnerID: owner.ID, ActiveOwner: owner}, nil
		}
		var appErr *response.AppError
		if !errors.As(err, &appErr) {
			return nil, err
		}
		// validation failure: fall through to the personal owner
	}

	personal, err := personalOwner(s.db, personID)
	if err != nil {
		return nil, err
	}
	return &SessionContext{PersonID: personID, ActiveOwnerID: personal.ID, ActiveOwner: personal}, nil
}

// ValidateSwitch is the strict variant used by explicit actor-switch
// requests. A nil requested id means "switch back to the personal
// owner". Any failed check is a hard Forbidden, never a fallback.
func (s *SessionService) ValidateSwitch(personID uint, requestedOwnerID *uint) (*models.Owner, error) {
	if requestedOwnerID == nil {
		return personalOwner(s.db, personID)
	}
	return s.validateOwnerFor(personID, *requestedOwnerID)
}

// validateOwnerFor checks the three switch conditions: the Owner exists,
// it was minted for this Person, and an organization-scoped Owner holds
// a role of at least MEMBER. Results are keyed off current database
// state; a token claim is never trusted on its own.
func (s *SessionService) validateOwnerFor(personID, ownerID uint) (*models.Owner, error) {
	var owner models.Owner
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewForbidden("owner does not exist")
		}
		return nil, err
	}

	if owner.PersonID != personID {
		return nil, response.NewForbidden("owner belongs to another person")
	}
	if owner.Status != models.OwnerStatusActive {
		return nil, response.NewForbidden("owner is not active")
	}

	if owner.OrganizationID != nil {
		var membership models.Membership
		err := s.db.Where("owner_id = ?", owner.ID).First(&membership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewForbidden("no membership for this organization")
			}
			return nil, err
		}
		if !membership.Role.AtLeast(models.RoleMember) {
			return nil, response.NewForbidden("followers cannot act as the organization")
		}
	}

	return &owner, nil
}

// Describe returns the tagged display identity of the given owner id.
func (s *SessionService) Describe(ownerID uint) (*OwnerView, error) {
	return s.owners.Describe(ownerID)
}
