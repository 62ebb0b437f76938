package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/teamboardhq/teamboard/internal/model"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
)

var versionFields = []string{"id", "attachment_id", "version_number", "file_key", "file_size", "edited_by", "change_summary", "ctime"}

type VersionRepo struct {
	db *sql.DB
}

func NewVersionRepo(db *sql.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

func (r *VersionRepo) Create(ctx context.Context, version *model.FileVersion) error {
	data := map[string]interface{}{
		"attachment_id":  version.AttachmentID,
		"version_number": version.VersionNumber,
		"file_key":       version.FileKey,
		"file_size":      version.FileSize,
		"edited_by":      version.EditedBy,
		"change_summary": version.ChangeSummary,
		"ctime":          version.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("file_versions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	version.ID, err = result.LastInsertId()
	return err
}

// LastVersionNumber returns 0 when the attachment has no versions yet.
func (r *VersionRepo) LastVersionNumber(ctx context.Context, attachmentID int64) (int, error) {
	where := map[string]interface{}{
		"attachment_id": attachmentID,
		"_orderby":      "version_number desc",
		"_limit":        []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("file_versions", where, []string{"version_number"})
	if err != nil {
		return 0, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, nil
	}
	var number int
	if err := rows.Scan(&number); err != nil {
		return 0, err
	}
	return number, nil
}

func (r *VersionRepo) GetByID(ctx context.Context, id int64) (*model.FileVersion, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("file_versions", where, versionFields)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanVersion(rows)
}

func (r *VersionRepo) ListByAttachment(ctx context.Context, attachmentID int64) ([]model.FileVersion, error) {
	where := map[string]interface{}{
		"attachment_id": attachmentID,
		"_orderby":      "version_number desc",
	}
	return r.list(ctx, where)
}

// ListBeyond returns versions older than the newest keep versions, oldest
// last. Used by the retention prune job.
func (r *VersionRepo) ListBeyond(ctx context.Context, attachmentID int64, keep int) ([]model.FileVersion, error) {
	if keep < 0 {
		keep = 0
	}
	sqlStr := `SELECT id, attachment_id, version_number, file_key, file_size, edited_by, change_summary, ctime
		FROM file_versions WHERE attachment_id = ? ORDER BY version_number DESC LIMIT -1 OFFSET ?`
	rows, err := r.db.QueryContext(ctx, sqlStr, attachmentID, keep)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectVersions(rows)
}

func (r *VersionRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("file_versions", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *VersionRepo) DeleteByAttachment(ctx context.Context, attachmentID int64) error {
	sqlStr, args, err := builder.BuildDelete("file_versions", map[string]interface{}{"attachment_id": attachmentID})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *VersionRepo) list(ctx context.Context, where map[string]interface{}) ([]model.FileVersion, error) {
	sqlStr, args, err := builder.BuildSelect("file_versions", where, versionFields)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectVersions(rows)
}

func collectVersions(rows *sql.Rows) ([]model.FileVersion, error) {
	versions := make([]model.FileVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

func scanVersion(rows *sql.Rows) (*model.FileVersion, error) {
	var v model.FileVersion
	if err := rows.Scan(&v.ID, &v.AttachmentID, &v.VersionNumber, &v.FileKey, &v.FileSize, &v.EditedBy, &v.ChangeSummary, &v.Ctime); err != nil {
		return nil, err
	}
	return &v, nil
}
