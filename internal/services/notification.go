package services

import (
	"context"
	"errors"
	"time"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationService materializes notification tasks into rows and
// serves the read side.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Deliver writes a notification row for a task. Idempotent per dedupe
// key, so redelivery by the queue cannot duplicate a notification.
func (s *NotificationService) Deliver(_ context.Context, task *NotificationTask) error {
	notification := models.Notification{
		RecipientOwnerID: task.RecipientOwnerID,
		ActorOwnerID:     task.ActorOwnerID,
		Kind:             task.Kind,
		Message:          task.Message,
	}

	query := s.db
	if task.DedupeKey != "" {
		key := task.DedupeKey
		notification.DedupeKey = &key
		query = query.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedupe_key"}},
			DoNothing: true,
		})
	}
	return query.Create(&notification).Error
}

type NotificationListResponse struct {
	Total    int64                 `json:"total"`
	Unread   int64                 `json:"unread"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Items    []models.Notification `json:"items"`
}

// List returns notifications addressed to the active Owner.
func (s *NotificationService) List(sc *SessionContext, page, pageSize int) (*NotificationListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.Notification{}).Where("recipient_owner_id = ?", sc.ActiveOwnerID)

	var total, unread int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Notification{}).
		Where("recipient_owner_id = ? AND read_at IS NULL", sc.ActiveOwnerID).
		Count(&unread).Error; err != nil {
		return nil, err
	}

	var items []models.Notification
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{Total: total, Unread: unread, Page: page, PageSize: pageSize, Items: items}, nil
}

// MarkRead marks one notification read. Only the recipient may do so.
func (s *NotificationService) MarkRead(sc *SessionContext, id uint) error {
	var notification models.Notification
	if err := s.db.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("notification not found")
		}
		return err
	}
	if err := AuthorizeMutation(sc, notification.RecipientOwnerID); err != nil {
		return err
	}
	if notification.ReadAt != nil {
		return nil
	}
	return s.db.Model(&notification).Update("read_at", time.Now()).Error
}
