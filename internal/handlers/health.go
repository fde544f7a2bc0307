package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/services"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Undelivered notification backlog
	var unreadCount int64
	models.GetDB().Model(&models.Notification{}).
		Where("read_at IS NULL").
		Count(&unreadCount)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "agora",
		"components": gin.H{
			"database":             dbStatus,
			"queue_mode":           queueMode,
			"unread_notifications": unreadCount,
		},
	})
}
