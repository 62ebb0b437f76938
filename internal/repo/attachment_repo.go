package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/teamboardhq/teamboard/internal/model"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
)

var attachmentFields = []string{"id", "card_id", "project_id", "file_key", "original_filename", "file_type", "file_size", "content", "mtime"}

type AttachmentRepo struct {
	db *sql.DB
}

func NewAttachmentRepo(db *sql.DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

func (r *AttachmentRepo) Create(ctx context.Context, attachment *model.Attachment) error {
	data := map[string]interface{}{
		"card_id":           attachment.CardID,
		"project_id":        attachment.ProjectID,
		"file_key":          attachment.FileKey,
		"original_filename": attachment.OriginalFilename,
		"file_type":         attachment.FileType,
		"file_size":         attachment.FileSize,
		"content":           attachment.Content,
		"mtime":             attachment.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("attachments", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	attachment.ID, err = result.LastInsertId()
	return err
}

func (r *AttachmentRepo) GetByID(ctx context.Context, id int64) (*model.Attachment, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("attachments", where, attachmentFields)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrAttachmentNotFound
	}
	var a model.Attachment
	if err := rows.Scan(&a.ID, &a.CardID, &a.ProjectID, &a.FileKey, &a.OriginalFilename, &a.FileType, &a.FileSize, &a.Content, &a.Mtime); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateSaved commits the durable part of a save or restore: new size and a
// bumped mtime. Extracted content goes through UpdateContent separately so an
// extraction failure cannot undo the save.
func (r *AttachmentRepo) UpdateSaved(ctx context.Context, id, fileSize, mtime int64) error {
	update := map[string]interface{}{
		"file_size": fileSize,
		"mtime":     mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("attachments", map[string]interface{}{"id": id}, update)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AttachmentRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	sqlStr, args, err := builder.BuildUpdate("attachments", map[string]interface{}{"id": id}, map[string]interface{}{"content": content})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AttachmentRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("attachments", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AttachmentRepo) ListIDs(ctx context.Context) ([]int64, error) {
	sqlStr, args, err := builder.BuildSelect("attachments", map[string]interface{}{"_orderby": "id asc"}, []string{"id"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
