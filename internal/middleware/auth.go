package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/utils"
)

const (
	ContextPersonID      = "person_id"
	ContextHandle        = "handle"
	ContextSystemRole    = "system_role"
	ContextActiveOwnerID = "active_owner_id"
)

// AuthRequired is a middleware that checks for a valid JWT token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextPersonID, claims.PersonID)
		c.Set(ContextHandle, claims.Handle)
		c.Set(ContextSystemRole, claims.SystemRole)
		if claims.ActiveOwnerID != nil {
			c.Set(ContextActiveOwnerID, *claims.ActiveOwnerID)
		}

		c.Next()
	}
}

// AdminRequired is a middleware that checks for the admin system role
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextSystemRole)
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPersonID gets the authenticated person ID from context
func GetPersonID(c *gin.Context) uint {
	if id, exists := c.Get(ContextPersonID); exists {
		return id.(uint)
	}
	return 0
}

// GetHandle gets the authenticated person's handle from context
func GetHandle(c *gin.Context) string {
	if handle, exists := c.Get(ContextHandle); exists {
		return handle.(string)
	}
	return ""
}

// GetSystemRole gets the authenticated person's system role from context
func GetSystemRole(c *gin.Context) string {
	if role, exists := c.Get(ContextSystemRole); exists {
		return role.(string)
	}
	return ""
}

// GetActiveOwnerID gets the active owner claim from context, if present.
func GetActiveOwnerID(c *gin.Context) *uint {
	if id, exists := c.Get(ContextActiveOwnerID); exists {
		v := id.(uint)
		return &v
	}
	return nil
}
