package main

import (
	"github.com/gin-gonic/gin"
	"github.com/openagora/agora/backend/internal/middleware"
	"github.com/openagora/agora/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.AllowedOrigins))

	// Rate limiter for unauthenticated auth routes
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Public read routes
		api.GET("/organizations", svc.organizationHandler.List)
		api.GET("/organizations/:id", svc.organizationHandler.GetByID)
		api.GET("/organizations/slug/:slug", svc.organizationHandler.GetBySlug)
		api.GET("/projects", svc.projectHandler.List)
		api.GET("/projects/:id", svc.projectHandler.GetByID)
		api.GET("/events", svc.eventHandler.List)
		api.GET("/events/:id", svc.eventHandler.GetByID)
		api.GET("/posts", svc.postHandler.List)
		api.GET("/posts/:id", svc.postHandler.GetByID)
		api.GET("/owners/:ownerId/followers", svc.followHandler.Followers)
		api.GET("/owners/:ownerId/following", svc.followHandler.Following)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Session / actor switching
			protected.GET("/session/owners", svc.sessionHandler.ListOwners)
			protected.GET("/session/active-owner", svc.sessionHandler.GetActiveOwner)
			protected.PUT("/session/active-owner", svc.sessionHandler.ValidateSwitch)
			protected.POST("/session/active-owner/commit", svc.sessionHandler.CommitSwitch)

			// Organizations
			protected.POST("/organizations", svc.organizationHandler.Create)
			protected.PATCH("/organizations/:id", svc.organizationHandler.Update)

			// Members
			protected.GET("/organizations/:id/members", svc.memberHandler.List)
			protected.POST("/organizations/:id/members", svc.memberHandler.Add)
			protected.PATCH("/organizations/:id/members/:ownerId", svc.memberHandler.ChangeRole)
			protected.DELETE("/organizations/:id/members/:ownerId", svc.memberHandler.Remove)

			// Follow graph
			protected.POST("/owners/:ownerId/follow", svc.followHandler.Follow)
			protected.DELETE("/owners/:ownerId/follow", svc.followHandler.Unfollow)

			// Projects
			protected.POST("/projects", svc.projectHandler.Create)
			protected.PATCH("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)
			protected.POST("/projects/:id/attachments", svc.projectHandler.RegisterAttachment)

			// Events
			protected.POST("/events", svc.eventHandler.Create)
			protected.PATCH("/events/:id", svc.eventHandler.Update)
			protected.DELETE("/events/:id", svc.eventHandler.Delete)
			protected.POST("/events/:id/attachments", svc.eventHandler.RegisterAttachment)

			// Posts
			protected.POST("/posts", svc.postHandler.Create)
			protected.PATCH("/posts/:id", svc.postHandler.Update)
			protected.DELETE("/posts/:id", svc.postHandler.Delete)

			// Messages
			protected.POST("/messages", svc.messageHandler.Send)
			protected.GET("/messages/inbox", svc.messageHandler.Inbox)
			protected.GET("/messages/sent", svc.messageHandler.Sent)
			protected.PUT("/messages/:id/read", svc.messageHandler.MarkRead)

			// Notifications
			protected.GET("/notifications", svc.notificationHandler.List)
			protected.PUT("/notifications/:id/read", svc.notificationHandler.MarkRead)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/system-logs", svc.systemLogHandler.List)
			admin.POST("/system-logs/cleanup", svc.systemLogHandler.Cleanup)
		}
	}
}
