package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/internal/storage"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type EventHandler struct {
	eventService      *services.EventService
	attachmentService *services.AttachmentService
	sessionService    *services.SessionService
}

func NewEventHandler(db *gorm.DB, releaser storage.Releaser) *EventHandler {
	return &EventHandler{
		eventService:      services.NewEventService(db, releaser),
		attachmentService: services.NewAttachmentService(db),
		sessionService:    services.NewSessionService(db),
	}
}

// List returns paginated events
// GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	var req services.ContentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.eventService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns an event by ID
// GET /api/events/:id
func (h *EventHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	event, err := h.eventService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

// Create creates an event attributed to the active owner
// POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.eventService.Create(sc, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// Update patches an event (owner attribution enforced)
// PATCH /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	var req services.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.eventService.Update(sc, uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

// Delete removes an event along with its posts and attachments
// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), sc, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "event deleted"})
}

// RegisterAttachment attaches a media record to an event
// POST /api/events/:id/attachments
func (h *EventHandler) RegisterAttachment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	var req services.RegisterAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	attachment, err := h.attachmentService.RegisterForEvent(sc, uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, attachment)
}
