package storage

import (
	"context"

	"github.com/openagora/agora/backend/pkg/logger"
)

// Releaser releases stored media objects when their owning content is
// deleted. The actual object store (filesystem, S3, ...) lives outside
// this service; implementations only need to honor the storage key.
type Releaser interface {
	Release(ctx context.Context, storageKey string) error
}

// LogReleaser is the default Releaser. It records the release so that an
// external cleanup job can reclaim the object later.
type LogReleaser struct{}

func NewLogReleaser() *LogReleaser {
	return &LogReleaser{}
}

func (r *LogReleaser) Release(_ context.Context, storageKey string) error {
	logger.Info().Str("storage_key", storageKey).Msg("attachment released")
	return nil
}
