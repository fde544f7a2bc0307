package main

import (
	"github.com/openagora/agora/backend/internal/config"
	"github.com/openagora/agora/backend/internal/handlers"
	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/services"
	"github.com/openagora/agora/backend/internal/storage"
	"github.com/openagora/agora/backend/internal/utils"
	"github.com/openagora/agora/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg       *config.Config
	releaser  storage.Releaser
	taskQueue services.TaskQueue
	worker    *services.Worker
	scheduler *services.MaintenanceScheduler

	authHandler         *handlers.AuthHandler
	sessionHandler      *handlers.SessionHandler
	organizationHandler *handlers.OrganizationHandler
	memberHandler       *handlers.MemberHandler
	followHandler       *handlers.FollowHandler
	projectHandler      *handlers.ProjectHandler
	eventHandler        *handlers.EventHandler
	postHandler         *handlers.PostHandler
	messageHandler      *handlers.MessageHandler
	notificationHandler *handlers.NotificationHandler
	systemLogHandler    *handlers.SystemLogHandler
	healthHandler       *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, queue, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	// Initialize system logger
	services.InitSystemLogger(db)

	// Attachment storage backend
	releaser := storage.NewLogReleaser()

	// Notification delivery
	notificationService := services.NewNotificationService(db)

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(notificationService.Deliver)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(notificationService.Deliver)
			worker.Start()
		}
	}

	// Start retention scheduler
	scheduler := services.NewMaintenanceScheduler(db, cfg.Retention)
	scheduler.Start()

	return &appServices{
		cfg:       cfg,
		releaser:  releaser,
		taskQueue: taskQueue,
		worker:    worker,
		scheduler: scheduler,

		authHandler:         handlers.NewAuthHandler(db, cfg),
		sessionHandler:      handlers.NewSessionHandler(db, cfg),
		organizationHandler: handlers.NewOrganizationHandler(db),
		memberHandler:       handlers.NewMemberHandler(db, taskQueue),
		followHandler:       handlers.NewFollowHandler(db, taskQueue),
		projectHandler:      handlers.NewProjectHandler(db, releaser),
		eventHandler:        handlers.NewEventHandler(db, releaser),
		postHandler:         handlers.NewPostHandler(db),
		messageHandler:      handlers.NewMessageHandler(db, taskQueue),
		notificationHandler: handlers.NewNotificationHandler(db),
		systemLogHandler:    handlers.NewSystemLogHandler(db),
		healthHandler:       handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All background services stopped")
}
