package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/config"
	"github.com/openagora/agora/backend/internal/middleware"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

type SessionHandler struct {
	sessionService *services.SessionService
	authService    *services.AuthService
	ownerService   *services.OwnerService
}

func NewSessionHandler(db *gorm.DB, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		sessionService: services.NewSessionService(db),
		authService:    services.NewAuthService(db, &cfg.JWT),
		ownerService:   services.NewOwnerService(db),
	}
}

// currentSession resolves the effective session context for the request,
// falling back to the personal owner when the token claim is stale.
func currentSession(c *gin.Context, sessions *services.SessionService) (*services.SessionContext, error) {
	return sessions.Resolve(middleware.GetPersonID(c), middleware.GetActiveOwnerID(c))
}

// GetActiveOwner returns the resolved active owner for this session
// GET /api/session/active-owner
func (h *SessionHandler) GetActiveOwner(c *gin.Context) {
	sc, err := currentSession(c, h.sessionService)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.sessionService.Describe(sc.ActiveOwnerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

type switchRequest struct {
	OwnerID *uint `json:"owner_id"`
}

// ValidateSwitch checks whether the person may act as the requested
// owner. It never changes the token; a passing check is confirmation
// that a subsequent commit will succeed.
// PUT /api/session/active-owner
func (h *SessionHandler) ValidateSwitch(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	owner, err := h.sessionService.ValidateSwitch(middleware.GetPersonID(c), req.OwnerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.ownerService.Describe(owner.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"valid": true, "owner": view})
}

// CommitSwitch re-signs the access token with the requested owner as
// the active-owner claim. Committing the already-active owner is a
// no-op re-sign, not an error.
// POST /api/session/active-owner/commit
func (h *SessionHandler) CommitSwitch(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	person, err := h.authService.GetPersonByID(middleware.GetPersonID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	token, expiresAt, err := h.authService.CommitActiveOwner(person, req.OwnerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"access_token": token,
		"expires_at":   expiresAt,
	})
}

// ListOwners returns every owner the person can act as
// GET /api/session/owners
func (h *SessionHandler) ListOwners(c *gin.Context) {
	views, err := h.ownerService.ListForPerson(middleware.GetPersonID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, views)
}
