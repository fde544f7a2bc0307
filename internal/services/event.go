package services

import (
	"context"
	"errors"
	"time"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/storage"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type EventService struct {
	db       *gorm.DB
	releaser storage.Releaser
}

func NewEventService(db *gorm.DB, releaser storage.Releaser) *EventService {
	return &EventService{db: db, releaser: releaser}
}

type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Summary     string     `json:"summary"`
	Body        string     `json:"body"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	IsPublished *bool      `json:"is_published"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Summary     *string    `json:"summary"`
	Body        *string    `json:"body"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	IsPublished *bool      `json:"is_published"`
}

func (s *EventService) Create(sc *SessionContext, req *CreateEventRequest) (*models.Event, error) {
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return nil, response.NewBadRequest("event cannot end before it starts")
	}

	event := models.Event{
		OwnerID:     sc.ActiveOwnerID,
		Title:       req.Title,
		Summary:     req.Summary,
		Body:        req.Body,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsPublished: true,
	}
	if req.IsPublished != nil {
		event.IsPublished = *req.IsPublished
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("event not found")
		}
		return nil, err
	}
	return &event, nil
}

type EventListResponse struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Items    []models.Event `json:"items"`
}

func (s *EventService) List(req *ContentListRequest) (*EventListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.Event{}).Where("is_published = ?", true)
	if req.OwnerID != nil {
		query = query.Where("owner_id = ?", *req.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Event
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("starts_at ASC").Offset(offset).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &EventListResponse{Total: total, Page: req.Page, PageSize: req.PageSize, Items: items}, nil
}

func (s *EventService) Update(sc *SessionContext, id uint, req *UpdateEventRequest) (*models.Event, error) {
	event, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(sc, event.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Summary != nil {
		event.Summary = *req.Summary
	}
	if req.Body != nil {
		event.Body = *req.Body
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}
	if req.IsPublished != nil {
		event.IsPublished = *req.IsPublished
	}
	if event.EndsAt != nil && event.EndsAt.Before(event.StartsAt) {
		return nil, response.NewBadRequest("event cannot end before it starts")
	}

	if err := s.db.Save(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event, cascades its posts and releases attachments.
func (s *EventService) Delete(ctx context.Context, sc *SessionContext, id uint) error {
	event, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := AuthorizeMutation(sc, event.OwnerID); err != nil {
		return err
	}

	var attachments []models.Attachment
	if err := s.db.Where("event_id = ?", id).Find(&attachments).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
	if err != nil {
		return err
	}

	for _, a := range attachments {
		if err := s.releaser.Release(ctx, a.StorageKey); err != nil {
			logError("event", "release_attachment", err)
		}
	}
	return nil
}
