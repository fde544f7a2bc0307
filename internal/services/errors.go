package services

import (
	"strings"

	"github.com/openagora/agora/backend/pkg/logger"
)

// isUniqueViolation does a best-effort detection of unique-constraint
// errors across the supported drivers (sqlite, mysql, postgres); gorm
// only translates these when TranslateError is enabled.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key value") // postgres
}

func logError(module, action string, err error) {
	logger.Error().Err(err).Str("module", module).Str("action", action).Msg("service error")
}
