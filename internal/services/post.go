package services

import (
	"errors"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body"`
	ProjectID *uint  `json:"project_id"`
	EventID   *uint  `json:"event_id"`
}

type UpdatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// Create publishes a post. A post may carry at most one parent; when it
// does, the parent's owner is re-resolved inside the transaction and
// must equal the active Owner. A general permission to post does not
// extend to attaching content under someone else's parent.
// The child's owner is taken from the parent, never from the request.
func (s *PostService) Create(sc *SessionContext, req *CreatePostRequest) (*models.Post, error) {
	if req.ProjectID != nil && req.EventID != nil {
		return nil, response.NewBadRequest("a post cannot belong to both a project and an event")
	}

	post := models.Post{
		OwnerID: sc.ActiveOwnerID,
		Title:   req.Title,
		Body:    req.Body,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		switch {
		case req.ProjectID != nil:
			var parent models.Project
			if err := tx.First(&parent, *req.ProjectID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return response.NewNotFound("project not found")
				}
				return err
			}
			if parent.OwnerID != sc.ActiveOwnerID {
				return response.NewForbidden("cannot post under a project owned by a different owner")
			}
			post.ProjectID = &parent.ID
			post.OwnerID = parent.OwnerID
		case req.EventID != nil:
			var parent models.Event
			if err := tx.First(&parent, *req.EventID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return response.NewNotFound("event not found")
				}
				return err
			}
			if parent.OwnerID != sc.ActiveOwnerID {
				return response.NewForbidden("cannot post under an event owned by a different owner")
			}
			post.EventID = &parent.ID
			post.OwnerID = parent.OwnerID
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("post not found")
		}
		return nil, err
	}
	return &post, nil
}

type PostListRequest struct {
	Page      int   `form:"page"`
	PageSize  int   `form:"page_size"`
	OwnerID   *uint `form:"owner_id"`
	ProjectID *uint `form:"project_id"`
	EventID   *uint `form:"event_id"`
}

type PostListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.Post `json:"items"`
}

func (s *PostService) List(req *PostListRequest) (*PostListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Post{})
	if req.OwnerID != nil {
		query = query.Where("owner_id = ?", *req.OwnerID)
	}
	if req.ProjectID != nil {
		query = query.Where("project_id = ?", *req.ProjectID)
	}
	if req.EventID != nil {
		query = query.Where("event_id = ?", *req.EventID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Post
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &PostListResponse{Total: total, Page: req.Page, PageSize: req.PageSize, Items: items}, nil
}

func (s *PostService) Update(sc *SessionContext, id uint, req *UpdatePostRequest) (*models.Post, error) {
	post, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(sc, post.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Body != nil {
		post.Body = *req.Body
	}

	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(sc *SessionContext, id uint) error {
	post, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := AuthorizeMutation(sc, post.OwnerID); err != nil {
		return err
	}
	return s.db.Delete(post).Error
}
