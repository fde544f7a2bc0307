package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type MessageService struct {
	db            *gorm.DB
	owners        *OwnerService
	notifications Notifier
}

func NewMessageService(db *gorm.DB, notifier Notifier) *MessageService {
	return &MessageService{db: db, owners: NewOwnerService(db), notifications: notifier}
}

type SendMessageRequest struct {
	RecipientOwnerID uint   `json:"recipient_owner_id" binding:"required"`
	Subject          string `json:"subject"`
	Body             string `json:"body" binding:"required"`
}

// Send delivers a message from the active Owner to the recipient Owner.
func (s *MessageService) Send(sc *SessionContext, req *SendMessageRequest) (*models.Message, error) {
	if req.RecipientOwnerID == sc.ActiveOwnerID {
		return nil, response.NewBadRequest("cannot message yourself")
	}

	recipient, err := s.owners.Describe(req.RecipientOwnerID)
	if err != nil {
		return nil, err
	}
	if recipient.Anomaly != "" {
		return nil, response.NewNotFound("recipient owner does not resolve to a person or organization")
	}

	message := models.Message{
		SenderOwnerID:    sc.ActiveOwnerID,
		RecipientOwnerID: req.RecipientOwnerID,
		Subject:          req.Subject,
		Body:             req.Body,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	if s.notifications != nil {
		actor := sc.ActiveOwnerID
		task := &NotificationTask{
			Kind:             models.NotificationKindMessage,
			RecipientOwnerID: req.RecipientOwnerID,
			ActorOwnerID:     &actor,
			Message:          "you have a new message",
			DedupeKey:        fmt.Sprintf("message:%d", message.ID),
		}
		if err := s.notifications.Enqueue(task); err != nil {
			logError("message", "notify", err)
		}
	}
	return &message, nil
}

type MessageListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Message `json:"items"`
}

// ListInbox returns messages addressed to the active Owner.
func (s *MessageService) ListInbox(sc *SessionContext, page, pageSize int) (*MessageListResponse, error) {
	return s.list("recipient_owner_id", sc.ActiveOwnerID, page, pageSize)
}

// ListSent returns messages sent by the active Owner.
func (s *MessageService) ListSent(sc *SessionContext, page, pageSize int) (*MessageListResponse, error) {
	return s.list("sender_owner_id", sc.ActiveOwnerID, page, pageSize)
}

func (s *MessageService) list(column string, ownerID uint, page, pageSize int) (*MessageListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.Model(&models.Message{}).Where(column+" = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Message
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &MessageListResponse{Total: total, Page: page, PageSize: pageSize, Items: items}, nil
}

// MarkRead marks a message read. Only the recipient Owner may do so.
func (s *MessageService) MarkRead(sc *SessionContext, messageID uint) error {
	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("message not found")
		}
		return err
	}
	if err := AuthorizeMutation(sc, message.RecipientOwnerID); err != nil {
		return err
	}
	if message.ReadAt != nil {
		return nil
	}
	now := time.Now()
	return s.db.Model(&message).Update("read_at", now).Error
}
