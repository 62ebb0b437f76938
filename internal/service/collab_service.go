package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/teamboardhq/teamboard/internal/docserver"
	"github.com/teamboardhq/teamboard/internal/extract"
	"github.com/teamboardhq/teamboard/internal/filestore"
	"github.com/teamboardhq/teamboard/internal/model"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
	"github.com/teamboardhq/teamboard/internal/pkg/keylock"
	"github.com/teamboardhq/teamboard/internal/pkg/timeutil"
	"github.com/teamboardhq/teamboard/internal/repo"
)

// Lifecycle statuses reported by the editor's save callback.
const (
	StatusUnknownKey     = 0
	StatusEditing        = 1
	StatusSave           = 2
	StatusSaveError      = 3
	StatusClosed         = 4
	StatusForceSave      = 6
	StatusForceSaveError = 7
)

// SystemUserID is the editor-of-record when a callback carries no user list.
const SystemUserID int64 = 1

const contentFetchTimeout = 30 * time.Second

type CacheDropper interface {
	DropCache(ctx context.Context, key string) error
}

type CallbackRequest struct {
	Status int      `json:"status"`
	Key    string   `json:"key"`
	URL    string   `json:"url"`
	Users  []string `json:"users"`
}

type RestoreResult struct {
	Attachment   *model.Attachment `json:"attachment"`
	NewDocKey    string            `json:"new_doc_key"`
	CacheDropped bool              `json:"cache_dropped"`
}

type CollabService struct {
	attachments *repo.AttachmentRepo
	versions    *repo.VersionRepo
	users       *repo.UserRepo
	members     *repo.MemberRepo
	store       filestore.Store
	dropper     CacheDropper
	locks       *keylock.KeyLock
	fetch       *http.Client
	// seen de-duplicates redelivered save callbacks; the editor mints a fresh
	// download URL per save, so key+url identifies one save event.
	seen *expirable.LRU[string, struct{}]
}

func NewCollabService(attachments *repo.AttachmentRepo, versions *repo.VersionRepo, users *repo.UserRepo, members *repo.MemberRepo, store filestore.Store, dropper CacheDropper) *CollabService {
	return &CollabService{
		attachments: attachments,
		versions:    versions,
		users:       users,
		members:     members,
		store:       store,
		dropper:     dropper,
		locks:       keylock.New(),
		fetch:       &http.Client{Timeout: contentFetchTimeout},
		seen:        expirable.NewLRU[string, struct{}](1024, nil, 10*time.Minute),
	}
}

// GetAuthorized resolves an attachment and checks the actor belongs to its
// project.
func (s *CollabService) GetAuthorized(ctx context.Context, attachmentID, userID int64) (*model.Attachment, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	ok, err := s.members.IsMember(ctx, attachment.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErr.ErrForbidden
	}
	return attachment, nil
}

// GetAttachment resolves an attachment without a membership check. Used by
// the download route the editor service fetches from.
func (s *CollabService) GetAttachment(ctx context.Context, attachmentID int64) (*model.Attachment, error) {
	return s.attachments.GetByID(ctx, attachmentID)
}

// HandleCallback drives the save-callback state machine. A nil return means
// the editor gets a success acknowledgement; any error maps to the generic
// failure acknowledgement, nothing more.
func (s *CollabService) HandleCallback(ctx context.Context, cb *CallbackRequest) error {
	logger := logutil.GetLogger(ctx).With(zap.String("key", cb.Key), zap.Int("status", cb.Status))
	switch cb.Status {
	case StatusSave, StatusForceSave:
		return s.persist(ctx, cb)
	case StatusSaveError, StatusForceSaveError:
		logger.Warn("editor reported save error")
		return nil
	case StatusEditing, StatusClosed, StatusUnknownKey:
		return nil
	default:
		logger.Warn("unexpected callback status")
		return nil
	}
}

func (s *CollabService) persist(ctx context.Context, cb *CallbackRequest) error {
	logger := logutil.GetLogger(ctx).With(zap.String("key", cb.Key))
	if cb.Key == "" || cb.URL == "" {
		return appErr.ErrInvalid
	}
	dedupeKey := cb.Key + "|" + cb.URL
	if _, dup := s.seen.Get(dedupeKey); dup {
		logger.Info("duplicate save callback, skipping persist")
		return nil
	}
	attachmentID, _, err := docserver.ParseKey(cb.Key)
	if err != nil {
		return err
	}
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	editedBy := s.resolveEditor(ctx, cb.Users)

	// Snapshot the content about to be superseded. If the fetch below fails
	// the record stays behind as a harmless orphan; the current blob and
	// mtime are untouched.
	version, snapshotted, err := s.snapshotIfPresent(ctx, attachment, editedBy, "")
	if err != nil {
		return err
	}
	if snapshotted {
		logger.Info("snapshotted current content", zap.Int("version", version.VersionNumber))
	}

	data, err := s.fetchContent(ctx, cb.URL)
	if err != nil {
		logger.Error("content fetch failed", zap.Error(err))
		return err
	}
	if err := s.commitContent(ctx, attachment, data); err != nil {
		logger.Error("commit saved content failed", zap.Error(err))
		return err
	}
	s.seen.Add(dedupeKey, struct{}{})

	// Best-effort re-extraction for search; separate transaction, failures
	// are swallowed.
	s.extractContent(ctx, attachment, data)
	return nil
}

func (s *CollabService) resolveEditor(ctx context.Context, users []string) int64 {
	if len(users) == 0 {
		return SystemUserID
	}
	id, err := strconv.ParseInt(users[0], 10, 64)
	if err != nil || id <= 0 {
		return SystemUserID
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return SystemUserID
	}
	return id
}

// snapshotIfPresent copies the attachment's current blob into an immutable
// version snapshot and appends the ledger record. The per-attachment lock
// covers number allocation through row insert and is released before any
// network I/O happens.
func (s *CollabService) snapshotIfPresent(ctx context.Context, attachment *model.Attachment, editedBy int64, summary string) (*model.FileVersion, bool, error) {
	exists, err := s.store.Exists(ctx, attachment.FileKey)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	s.locks.Lock(attachment.ID)
	defer s.locks.Unlock(attachment.ID)

	last, err := s.versions.LastVersionNumber(ctx, attachment.ID)
	if err != nil {
		return nil, false, err
	}
	number := last + 1
	versionKey := fmt.Sprintf("%d_v%d_%s", attachment.ID, number, attachment.FileKey)
	if err := s.store.Copy(ctx, attachment.FileKey, versionKey); err != nil {
		return nil, false, fmt.Errorf("snapshot blob: %w", err)
	}
	size, err := s.store.Size(ctx, versionKey)
	if err != nil {
		return nil, false, err
	}
	if summary == "" {
		summary = fmt.Sprintf("Version %d saved via document editor", number)
	}
	version := &model.FileVersion{
		AttachmentID:  attachment.ID,
		VersionNumber: number,
		FileKey:       versionKey,
		FileSize:      size,
		EditedBy:      editedBy,
		ChangeSummary: summary,
		Ctime:         timeutil.NowUnix(),
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return nil, false, err
	}
	return version, true, nil
}

func (s *CollabService) fetchContent(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrContentFetchFailed, err)
	}
	resp, err := s.fetch.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrContentFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", appErr.ErrContentFetchFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrContentFetchFailed, err)
	}
	return data, nil
}

// commitContent overwrites the current blob and commits size+mtime as one
// durable unit. The blob write is atomic (temp+rename or object put), so
// readers never see a torn file.
func (s *CollabService) commitContent(ctx context.Context, attachment *model.Attachment, data []byte) error {
	if err := s.store.Save(ctx, attachment.FileKey, bytes.NewReader(data), int64(len(data))); err != nil {
		return err
	}
	now := nextMtime(attachment.Mtime)
	if err := s.attachments.UpdateSaved(ctx, attachment.ID, int64(len(data)), now); err != nil {
		return err
	}
	attachment.FileSize = int64(len(data))
	attachment.Mtime = now
	return nil
}

// nextMtime clamps the clock so mtime strictly advances even when two
// mutations land within the same millisecond; the document key is derived
// from mtime and must rotate on every commit.
func nextMtime(current int64) int64 {
	now := timeutil.NowMillis()
	if now <= current {
		return current + 1
	}
	return now
}

func (s *CollabService) extractContent(ctx context.Context, attachment *model.Attachment, data []byte) {
	text, err := extract.Text(attachment.OriginalFilename, bytes.NewReader(data), extract.DefaultMaxChars)
	if err == nil && text != "" {
		err = s.attachments.UpdateContent(ctx, attachment.ID, text)
	}
	if err != nil {
		logutil.GetLogger(ctx).Warn("content extraction failed",
			zap.Int64("attachment_id", attachment.ID), zap.Error(err))
	}
}

// Restore rewinds the attachment's current content to a prior version. The
// content being replaced is snapshotted first, so restore never loses data.
func (s *CollabService) Restore(ctx context.Context, attachmentID, versionID, actorID int64) (*RestoreResult, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version.AttachmentID != attachmentID {
		return nil, appErr.ErrVersionMismatch
	}
	exists, err := s.store.Exists(ctx, version.FileKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, appErr.ErrVersionBlobMissing
	}

	// The key the editor currently has cached, captured before any mutation.
	oldKey := docserver.DeriveKey(attachmentID, attachment.Mtime)

	summary := fmt.Sprintf("Backup before restoring to version %d", version.VersionNumber)
	if _, _, err := s.snapshotIfPresent(ctx, attachment, actorID, summary); err != nil {
		return nil, err
	}
	if err := s.store.Copy(ctx, version.FileKey, attachment.FileKey); err != nil {
		return nil, fmt.Errorf("restore blob: %w", err)
	}
	now := nextMtime(attachment.Mtime)
	if err := s.attachments.UpdateSaved(ctx, attachmentID, version.FileSize, now); err != nil {
		return nil, err
	}
	attachment.FileSize = version.FileSize
	attachment.Mtime = now

	dropped := true
	if err := s.dropper.DropCache(ctx, oldKey); err != nil {
		dropped = false
		logutil.GetLogger(ctx).Warn("cache drop failed",
			zap.String("doc_key", oldKey), zap.Error(err))
	}
	return &RestoreResult{
		Attachment:   attachment,
		NewDocKey:    docserver.DeriveKey(attachmentID, now),
		CacheDropped: dropped,
	}, nil
}

// SnapshotNow records a version of the current content without mutating it.
func (s *CollabService) SnapshotNow(ctx context.Context, attachmentID, actorID int64, summary string) (*model.FileVersion, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if summary == "" {
		summary = "Manually saved version"
	}
	version, snapshotted, err := s.snapshotIfPresent(ctx, attachment, actorID, summary)
	if err != nil {
		return nil, err
	}
	if !snapshotted {
		return nil, appErr.ErrAttachmentBlobMissing
	}
	return version, nil
}

func (s *CollabService) ListVersions(ctx context.Context, attachmentID int64) ([]model.FileVersion, error) {
	if _, err := s.attachments.GetByID(ctx, attachmentID); err != nil {
		return nil, err
	}
	return s.versions.ListByAttachment(ctx, attachmentID)
}

// DeleteAttachment removes the attachment row, its version ledger and every
// associated blob. Blob deletes are best-effort; a missing file is not fatal.
func (s *CollabService) DeleteAttachment(ctx context.Context, attachmentID int64) error {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	versions, err := s.versions.ListByAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := s.store.Delete(ctx, v.FileKey); err != nil {
			logutil.GetLogger(ctx).Warn("delete version blob failed",
				zap.String("file_key", v.FileKey), zap.Error(err))
		}
	}
	if err := s.versions.DeleteByAttachment(ctx, attachmentID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, attachment.FileKey); err != nil {
		logutil.GetLogger(ctx).Warn("delete attachment blob failed",
			zap.String("file_key", attachment.FileKey), zap.Error(err))
	}
	return s.attachments.Delete(ctx, attachmentID)
}
