package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/middleware"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type OrganizationHandler struct {
	organizationService *services.OrganizationService
}

func NewOrganizationHandler(db *gorm.DB) *OrganizationHandler {
	return &OrganizationHandler{
		organizationService: services.NewOrganizationService(db),
	}
}

// Create founds a new organization with the caller as its first OWNER
// POST /api/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req services.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.organizationService.Create(middleware.GetPersonID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// List returns public organizations, paginated
// GET /api/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	var req services.OrganizationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.organizationService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns an organization by numeric id
// GET /api/organizations/:id
func (h *OrganizationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}

	org, err := h.organizationService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, org)
}

// GetBySlug returns an organization by its slug
// GET /api/organizations/slug/:slug
func (h *OrganizationHandler) GetBySlug(c *gin.Context) {
	org, err := h.organizationService.GetBySlug(c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, org)
}

// Update patches the organization profile (ADMIN or OWNER only)
// PATCH /api/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}

	var req services.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	org, err := h.organizationService.Update(middleware.GetPersonID(c), uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, org)
}
