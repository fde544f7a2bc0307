package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type MessageHandler struct {
	messageService *services.MessageService
	sessionService *services.SessionService
}

func NewMessageHandler(db *gorm.DB, notifier services.Notifier) *MessageHandler {
	return &MessageHandler{
		messageService: services.NewMessageService(db, notifier),
		sessionService: services.NewSessionService(db),
	}
}

func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

// Send delivers a message from the active owner
// POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	msg, err := h.messageService.Send(sc, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}

// Inbox lists messages received by the active owner
// GET /api/messages/inbox
func (h *MessageHandler) Inbox(c *gin.Context) {
	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, pageSize := pageParams(c)
	resp, err := h.messageService.ListInbox(sc, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Sent lists messages sent by the active owner
// GET /api/messages/sent
func (h *MessageHandler) Sent(c *gin.Context) {
	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, pageSize := pageParams(c)
	resp, err := h.messageService.ListSent(sc, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// MarkRead marks a received message as read (idempotent)
// PUT /api/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.messageService.MarkRead(sc, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "marked read"})
}
