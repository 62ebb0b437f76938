package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/teamboardhq/teamboard/internal/filestore"
	"github.com/teamboardhq/teamboard/internal/repo"
)

// VersionPruneJob enforces per-attachment version retention: ledger rows
// beyond the newest maxKeep are removed along with their snapshot blobs.
// maxKeep <= 0 disables pruning entirely.
type VersionPruneJob struct {
	attachments *repo.AttachmentRepo
	versions    *repo.VersionRepo
	store       filestore.Store
	maxKeep     int
}

func NewVersionPruneJob(attachments *repo.AttachmentRepo, versions *repo.VersionRepo, store filestore.Store, maxKeep int) *VersionPruneJob {
	return &VersionPruneJob{attachments: attachments, versions: versions, store: store, maxKeep: maxKeep}
}

func (j *VersionPruneJob) Name() string {
	return "version_prune"
}

func (j *VersionPruneJob) Run(ctx context.Context) error {
	if j.maxKeep <= 0 {
		return nil
	}
	ids, err := j.attachments.ListIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		stale, err := j.versions.ListBeyond(ctx, id, j.maxKeep)
		if err != nil {
			return err
		}
		for _, v := range stale {
			// Blob first: an orphaned row is retried next run, an orphaned
			// blob would never be.
			if err := j.store.Delete(ctx, v.FileKey); err != nil {
				logutil.GetLogger(ctx).Warn("delete version blob failed",
					zap.String("file_key", v.FileKey), zap.Error(err))
				continue
			}
			if err := j.versions.Delete(ctx, v.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
