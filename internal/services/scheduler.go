package services

import (
	"time"

	"github.com/openagora/agora/backend/internal/config"
	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// MaintenanceScheduler runs periodic housekeeping: trimming old system
// logs and purging refresh tokens that are expired or revoked.
type MaintenanceScheduler struct {
	db            *gorm.DB
	cfg           config.RetentionConfig
	cronScheduler *cron.Cron
}

func NewMaintenanceScheduler(db *gorm.DB, cfg config.RetentionConfig) *MaintenanceScheduler {
	return &MaintenanceScheduler{db: db, cfg: cfg}
}

func (s *MaintenanceScheduler) Start() {
	s.cronScheduler = cron.New()

	spec := s.cfg.CronSpec
	if spec == "" {
		spec = "0 3 * * *"
	}

	_, err := s.cronScheduler.AddFunc(spec, func() {
		s.runOnce()
	})
	if err != nil {
		logger.Error().Err(err).Str("spec", spec).Msg("failed to schedule maintenance job")
		return
	}

	s.cronScheduler.Start()
	logger.Info().Str("spec", spec).Msg("maintenance scheduler started")
}

func (s *MaintenanceScheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

func (s *MaintenanceScheduler) runOnce() {
	days := s.cfg.SystemLogDays
	if days <= 0 {
		days = 90
	}

	removed, err := NewSystemLogService(s.db).Cleanup(days)
	if err != nil {
		logger.Error().Err(err).Msg("system log cleanup failed")
	} else if removed > 0 {
		logger.Info().Int64("removed", removed).Int("retention_days", days).Msg("system logs trimmed")
	}

	purged, err := s.purgeRefreshTokens()
	if err != nil {
		logger.Error().Err(err).Msg("refresh token purge failed")
	} else if purged > 0 {
		logger.Info().Int64("purged", purged).Msg("stale refresh tokens purged")
	}
}

func (s *MaintenanceScheduler) purgeRefreshTokens() (int64, error) {
	result := s.db.
		Where("expires_at < ? OR revoked_at IS NOT NULL", time.Now()).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
