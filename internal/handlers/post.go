package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type PostHandler struct {
	postService    *services.PostService
	sessionService *services.SessionService
}

func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{
		postService:    services.NewPostService(db),
		sessionService: services.NewSessionService(db),
	}
}

// List returns paginated posts, optionally filtered by owner or parent
// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	var req services.PostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.postService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a post by ID
// GET /api/posts/:id
func (h *PostHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	post, err := h.postService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

// Create creates a post, standalone or under a project/event
// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := h.postService.Create(sc, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, post)
}

// Update patches a post (owner attribution enforced)
// PATCH /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	var req services.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := h.postService.Update(sc, uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, post)
}

// Delete removes a post
// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.postService.Delete(sc, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "post deleted"})
}
