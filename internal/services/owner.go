package services

import (
	"errors"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

// OwnerService answers identity-store queries about Owner records and
// resolves an Owner to its display identity.
type OwnerService struct {
	db *gorm.DB
}

func NewOwnerService(db *gorm.DB) *OwnerService {
	return &OwnerService{db: db}
}

// PersonRef is the display identity of a person-kind Owner.
type PersonRef struct {
	ID          uint   `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// OrganizationRef is the display identity of an organization-kind Owner.
type OrganizationRef struct {
	ID     uint   `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// OwnerView is the tagged display identity of an Owner. Exactly one of
// Person / Organization is set according to Kind; consumers switch on
// the tag instead of probing optional fields. Anomaly carries a
// data-integrity note when the Owner resolves to neither.
type OwnerView struct {
	OwnerID      uint             `json:"owner_id"`
	Kind         models.OwnerKind `json:"kind"`
	Person       *PersonRef       `json:"person,omitempty"`
	Organization *OrganizationRef `json:"organization,omitempty"`
	Anomaly      string           `json:"anomaly,omitempty"`
}

// GetByID loads an Owner or returns NotFound.
func (s *OwnerService) GetByID(id uint) (*models.Owner, error) {
	var owner models.Owner
	if err := s.db.First(&owner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("owner not found")
		}
		return nil, err
	}
	return &owner, nil
}

// PersonalOwner returns the Person's personal Owner (OrganizationID nil).
func (s *OwnerService) PersonalOwner(personID uint) (*models.Owner, error) {
	return personalOwner(s.db, personID)
}

func personalOwner(db *gorm.DB, personID uint) (*models.Owner, error) {
	var owner models.Owner
	err := db.Where("person_id = ? AND organization_id IS NULL", personID).First(&owner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("personal owner not found")
		}
		return nil, err
	}
	return &owner, nil
}

// ensurePersonalOwner loads or creates the personal Owner inside tx.
// Registration normally creates it, but a first-ever organization
// creation by a legacy account goes through here as well.
func ensurePersonalOwner(tx *gorm.DB, personID uint) (*models.Owner, error) {
	var owner models.Owner
	err := tx.Where("person_id = ? AND organization_id IS NULL", personID).First(&owner).Error
	if err == nil {
		return &owner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	owner = models.Owner{
		PersonID: personID,
		Kind:     models.OwnerKindPerson,
		Status:   models.OwnerStatusActive,
	}
	if err := tx.Create(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// ListForPerson returns the display identities of every active Owner
// minted for the person: the personal Owner plus one per organization
// membership. The personal Owner sorts first.
func (s *OwnerService) ListForPerson(personID uint) ([]OwnerView, error) {
	var owners []models.Owner
	err := s.db.
		Where("person_id = ? AND status = ?", personID, models.OwnerStatusActive).
		Order("organization_id IS NOT NULL, id").
		Find(&owners).Error
	if err != nil {
		return nil, err
	}

	views := make([]OwnerView, 0, len(owners))
	for i := range owners {
		views = append(views, *s.describeOwner(&owners[i]))
	}
	return views, nil
}

// Describe resolves an Owner id to its tagged display identity. An Owner
// whose backing Person or Organization row is missing is reported via
// the Anomaly field rather than failing the whole listing.
func (s *OwnerService) Describe(ownerID uint) (*OwnerView, error) {
	var owner models.Owner
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("owner not found")
		}
		return nil, err
	}
	return s.describeOwner(&owner), nil
}

func (s *OwnerService) describeOwner(owner *models.Owner) *OwnerView {
	view := &OwnerView{OwnerID: owner.ID, Kind: owner.Kind}

	switch owner.Kind {
	case models.OwnerKindPerson:
		var person models.Person
		if err := s.db.First(&person, owner.PersonID).Error; err != nil {
			view.Anomaly = "owner references missing person"
			return view
		}
		view.Person = &PersonRef{
			ID:          person.ID,
			Handle:      person.Handle,
			DisplayName: person.DisplayName,
			Avatar:      person.Avatar,
		}
	case models.OwnerKindOrganization:
		if owner.OrganizationID == nil {
			view.Anomaly = "organization-kind owner has no organization"
			return view
		}
		var org models.Organization
		if err := s.db.First(&org, *owner.OrganizationID).Error; err != nil {
			view.Anomaly = "owner references missing organization"
			return view
		}
		view.Organization = &OrganizationRef{
			ID:     org.ID,
			Slug:   org.Slug,
			Name:   org.Name,
			Avatar: org.Avatar,
		}
	default:
		view.Anomaly = "owner has unknown kind"
	}

	return view
}
