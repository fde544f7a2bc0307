package services

import (
	"context"
	"errors"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/storage"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db       *gorm.DB
	releaser storage.Releaser
}

func NewProjectService(db *gorm.DB, releaser storage.Releaser) *ProjectService {
	return &ProjectService{db: db, releaser: releaser}
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Summary     string `json:"summary"`
	Body        string `json:"body"`
	Website     string `json:"website"`
	IsPublished *bool  `json:"is_published"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Summary     *string `json:"summary"`
	Body        *string `json:"body"`
	Website     *string `json:"website"`
	IsPublished *bool   `json:"is_published"`
}

// Create publishes a project attributed to the session's active Owner.
func (s *ProjectService) Create(sc *SessionContext, req *CreateProjectRequest) (*models.Project, error) {
	project := models.Project{
		OwnerID:     sc.ActiveOwnerID,
		Title:       req.Title,
		Summary:     req.Summary,
		Body:        req.Body,
		Website:     req.Website,
		IsPublished: true,
	}
	if req.IsPublished != nil {
		project.IsPublished = *req.IsPublished
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

type ContentListRequest struct {
	Page     int   `form:"page"`
	PageSize int   `form:"page_size"`
	OwnerID  *uint `form:"owner_id"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

func (s *ProjectService) List(req *ContentListRequest) (*ProjectListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Project{}).Where("is_published = ?", true)
	if req.OwnerID != nil {
		query = query.Where("owner_id = ?", *req.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Project
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{Total: total, Page: req.Page, PageSize: req.PageSize, Items: items}, nil
}

// Update mutates a project after the attribution check.
func (s *ProjectService) Update(sc *SessionContext, id uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(sc, project.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Summary != nil {
		project.Summary = *req.Summary
	}
	if req.Body != nil {
		project.Body = *req.Body
	}
	if req.Website != nil {
		project.Website = *req.Website
	}
	if req.IsPublished != nil {
		project.IsPublished = *req.IsPublished
	}

	if err := s.db.Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project, cascades its posts and releases its
// attachments through the storage collaborator.
func (s *ProjectService) Delete(ctx context.Context, sc *SessionContext, id uint) error {
	project, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := AuthorizeMutation(sc, project.OwnerID); err != nil {
		return err
	}

	var attachments []models.Attachment
	if err := s.db.Where("project_id = ?", id).Find(&attachments).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return err
	}

	for _, a := range attachments {
		if err := s.releaser.Release(ctx, a.StorageKey); err != nil {
			logError("project", "release_attachment", err)
		}
	}
	return nil
}
