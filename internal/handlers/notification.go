package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	sessionService      *services.SessionService
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notificationService: services.NewNotificationService(db),
		sessionService:      services.NewSessionService(db),
	}
}

// List returns notifications for the active owner
// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, pageSize := pageParams(c)
	resp, err := h.notificationService.List(sc, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// MarkRead marks a notification as read
// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.notificationService.MarkRead(sc, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "marked read"})
}
