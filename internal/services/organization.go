package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type OrganizationService struct {
	db *gorm.DB
}

func NewOrganizationService(db *gorm.DB) *OrganizationService {
	return &OrganizationService{db: db}
}

type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Avatar      string `json:"avatar"`
	IsPublic    *bool  `json:"is_public"`
}

type CreateOrganizationResult struct {
	Organization *models.Organization `json:"organization"`
	OwnerID      uint                 `json:"owner_id"`
}

// Create runs the founding transaction: personal Owner (created if this
// is the person's first-ever action), Organization, organization-scoped
// Owner, Membership with role OWNER. All four or none; an Organization
// never exists without an OWNER membership, even transiently outside
// the transaction boundary.
func (s *OrganizationService) Create(personID uint, req *CreateOrganizationRequest) (*CreateOrganizationResult, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, response.NewBadRequest("slug must be lowercase letters, digits and hyphens")
	}

	// Cheap pre-check; the unique index still backs this under race.
	var count int64
	if err := s.db.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("slug already taken")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	var result CreateOrganizationResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		personal, err := ensurePersonalOwner(tx, personID)
		if err != nil {
			return err
		}

		org := models.Organization{
			Name:           strings.TrimSpace(req.Name),
			Slug:           slug,
			Description:    req.Description,
			Website:        req.Website,
			Avatar:         req.Avatar,
			PrimaryOwnerID: personal.ID,
			IsPublic:       isPublic,
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		orgOwner := models.Owner{
			PersonID:       personID,
			OrganizationID: &org.ID,
			Kind:           models.OwnerKindOrganization,
			Status:         models.OwnerStatusActive,
		}
		if err := tx.Create(&orgOwner).Error; err != nil {
			return err
		}

		membership := models.Membership{
			OwnerID:        orgOwner.ID,
			OrganizationID: org.ID,
			Role:           models.RoleOwner,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		result.Organization = &org
		result.OwnerID = orgOwner.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *OrganizationService) GetByID(id uint) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("organization not found")
		}
		return nil, err
	}
	return &org, nil
}

func (s *OrganizationService) GetBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.Where("slug = ?", strings.ToLower(slug)).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("organization not found")
		}
		return nil, err
	}
	return &org, nil
}

type OrganizationListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Name     string `form:"name"`
}

type OrganizationListResponse struct {
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Organization `json:"items"`
}

// List returns public organizations, paginated.
func (s *OrganizationService) List(req *OrganizationListRequest) (*OrganizationListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Organization{}).Where("is_public = ?", true)
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Organization
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &OrganizationListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

type UpdateOrganizationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	Avatar      *string `json:"avatar"`
	IsPublic    *bool   `json:"is_public"`
}

// Update edits the organization profile. Requires an administering role;
// this is an organization-level admin action, distinct from content
// attribution which always compares owner ids.
func (s *OrganizationService) Update(requesterPersonID, organizationID uint, req *UpdateOrganizationRequest) (*models.Organization, error) {
	members := NewMembershipService(s.db, nil)
	canAdmin, err := members.CanAdminister(requesterPersonID, organizationID)
	if err != nil {
		return nil, err
	}
	if !canAdmin {
		return nil, response.NewForbidden("admin role required")
	}

	org, err := s.GetByID(organizationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.Website != nil {
		org.Website = *req.Website
	}
	if req.Avatar != nil {
		org.Avatar = *req.Avatar
	}
	if req.IsPublic != nil {
		org.IsPublic = *req.IsPublic
	}

	if err := s.db.Save(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}
