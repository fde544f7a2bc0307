package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type FollowHandler struct {
	followService  *services.FollowService
	sessionService *services.SessionService
}

func NewFollowHandler(db *gorm.DB, notifier services.Notifier) *FollowHandler {
	return &FollowHandler{
		followService:  services.NewFollowService(db, notifier),
		sessionService: services.NewSessionService(db),
	}
}

func ownerIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("ownerId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid owner id")
		return 0, false
	}
	return uint(id), true
}

// Follow makes the active owner follow the target owner
// POST /api/owners/:ownerId/follow
func (h *FollowHandler) Follow(c *gin.Context) {
	targetID, ok := ownerIDParam(c)
	if !ok {
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.followService.Follow(sc, targetID); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"following": true})
}

// Unfollow removes the follow edge; removing an absent edge succeeds
// DELETE /api/owners/:ownerId/follow
func (h *FollowHandler) Unfollow(c *gin.Context) {
	targetID, ok := ownerIDParam(c)
	if !ok {
		return
	}

	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.followService.Unfollow(sc, targetID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"following": false})
}

// Followers lists the owners following the target
// GET /api/owners/:ownerId/followers
func (h *FollowHandler) Followers(c *gin.Context) {
	targetID, ok := ownerIDParam(c)
	if !ok {
		return
	}

	views, err := h.followService.ListFollowers(targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, views)
}

// Following lists the owners the target follows
// GET /api/owners/:ownerId/following
func (h *FollowHandler) Following(c *gin.Context) {
	targetID, ok := ownerIDParam(c)
	if !ok {
		return
	}

	views, err := h.followService.ListFollowing(targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, views)
}
