package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/middleware"
	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type MemberHandler struct {
	membershipService *services.MembershipService
}

func NewMemberHandler(db *gorm.DB, notifier services.Notifier) *MemberHandler {
	return &MemberHandler{
		membershipService: services.NewMembershipService(db, notifier),
	}
}

func orgIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return 0, false
	}
	return uint(id), true
}

// List returns the members of an organization
// GET /api/organizations/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	members, err := h.membershipService.ListMembers(orgID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

// Add invites a person into the organization
// POST /api/organizations/:id/members
func (h *MemberHandler) Add(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.membershipService.AddMember(middleware.GetPersonID(c), orgID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, membership)
}

type changeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// ChangeRole updates a member's role (OWNER only)
// PUT /api/organizations/:id/members/:ownerId
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	targetOwnerID, err := strconv.ParseUint(c.Param("ownerId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid owner id")
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.membershipService.ChangeRole(middleware.GetPersonID(c), orgID, uint(targetOwnerID), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, membership)
}

// Remove takes a member out of the organization. The member's Owner row
// survives so their past content keeps its attribution.
// DELETE /api/organizations/:id/members/:ownerId
func (h *MemberHandler) Remove(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	targetOwnerID, err := strconv.ParseUint(c.Param("ownerId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid owner id")
		return
	}

	if err := h.membershipService.RemoveMember(middleware.GetPersonID(c), orgID, uint(targetOwnerID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "member removed"})
}
