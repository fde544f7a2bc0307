package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

// AttachmentService registers stored media against a Project or Event.
// The upload itself happens at the storage boundary; registration only
// mints the storage key and records the parent linkage.
type AttachmentService struct {
	db *gorm.DB
}

func NewAttachmentService(db *gorm.DB) *AttachmentService {
	return &AttachmentService{db: db}
}

type RegisterAttachmentRequest struct {
	FileName  string `json:"file_name" binding:"required"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// RegisterForProject attaches a media record to a project. The same
// attribution rule as content mutation applies: only the project's
// owner may attach.
func (s *AttachmentService) RegisterForProject(sc *SessionContext, projectID uint, req *RegisterAttachmentRequest) (*models.Attachment, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	if err := AuthorizeMutation(sc, project.OwnerID); err != nil {
		return nil, err
	}

	attachment := models.Attachment{
		OwnerID:    project.OwnerID,
		ProjectID:  &project.ID,
		StorageKey: uuid.NewString(),
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// RegisterForEvent attaches a media record to an event.
func (s *AttachmentService) RegisterForEvent(sc *SessionContext, eventID uint, req *RegisterAttachmentRequest) (*models.Attachment, error) {
	var event models.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("event not found")
		}
		return nil, err
	}
	if err := AuthorizeMutation(sc, event.OwnerID); err != nil {
		return nil, err
	}

	attachment := models.Attachment{
		OwnerID:    event.OwnerID,
		EventID:    &event.ID,
		StorageKey: uuid.NewString(),
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}
