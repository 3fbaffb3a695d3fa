package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pharmatrust/docvault/internal/filestore"
	"github.com/pharmatrust/docvault/internal/repo"
)

// ReportCleanupJob purges finished report jobs past the retention window and
// deletes their artifacts from the file store. Audit logs are untouchable:
// nothing here or anywhere else deletes them.
type ReportCleanupJob struct {
	jobs      *repo.ReportJobRepo
	store     filestore.Store
	retention time.Duration
}

func NewReportCleanupJob(jobs *repo.ReportJobRepo, store filestore.Store, retention time.Duration) *ReportCleanupJob {
	return &ReportCleanupJob{jobs: jobs, store: store, retention: retention}
}

func (j *ReportCleanupJob) Name() string {
	return "report_cleanup"
}

func (j *ReportCleanupJob) Run(ctx context.Context) error {
	retention := j.retention
	if retention <= 0 {
		retention = 72 * time.Hour
	}
	cutoff := time.Now().Add(-retention).Unix()
	keys, err := j.jobs.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := j.store.Delete(ctx, key); err != nil {
			logutil.GetLogger(ctx).Warn("delete report artifact failed", zap.String("key", key), zap.Error(err))
		}
	}
	if len(keys) > 0 {
		logutil.GetLogger(ctx).Info("report cleanup done", zap.Int("removed", len(keys)))
	}
	return nil
}
