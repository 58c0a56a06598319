// Package jobs contains the scheduled jobs run by the dashboard worker.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/snapx-edu/academy-hub/internal/application/coursestate"
)

// RefreshCatalogJob periodically reloads the course catalog and enrollment
// state from the remote record store so that long-lived sessions converge
// with server-side changes.
type RefreshCatalogJob struct {
	store  *coursestate.Store
	logger *slog.Logger
}

// NewRefreshCatalogJob creates a new RefreshCatalogJob.
func NewRefreshCatalogJob(store *coursestate.Store, logger *slog.Logger) *RefreshCatalogJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshCatalogJob{
		store:  store,
		logger: logger,
	}
}

// Name returns the job name.
func (j *RefreshCatalogJob) Name() string {
	return "refresh_catalog"
}

// Description returns the job description.
func (j *RefreshCatalogJob) Description() string {
	return "Reloads the course catalog and merges remote enrollment state"
}

// Run executes the catalog refresh.
func (j *RefreshCatalogJob) Run(ctx context.Context) error {
	if j.store == nil {
		return fmt.Errorf("refresh_catalog: course store is not configured")
	}

	courses := j.store.Load(ctx)

	j.logger.Info("catalog refreshed",
		"courses", len(courses),
		"fallback", j.store.UsedFallback(),
	)
	return nil
}
