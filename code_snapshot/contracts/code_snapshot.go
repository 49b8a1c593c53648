package contracts

import (
	"context"

	"github.com/meysamhadeli/codesnap/code_snapshot/models"
)

type IGatherer interface {
	Gather(ctx context.Context, profile models.Profile) (*models.GatherResult, error)
	ForgetProfile(profile models.Profile) error
	CleanupCache(options models.CacheCleanupOptions) (map[string]interface{}, error)
	ClearCache() error
	GetCacheStats() (map[string]interface{}, error)
}

// IReporter receives progress while a gather is running. It is informational only.
type IReporter interface {
	Start(root string)
	FileAdded(relativePath string)
	FileFailed(relativePath string, err error)
	Warn(message string)
	Done(outputPath string)
}
