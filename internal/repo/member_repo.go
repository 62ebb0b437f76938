package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
)

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	where := map[string]interface{}{
		"project_id": projectID,
		"user_id":    userID,
	}
	sqlStr, args, err := builder.BuildSelect("project_members", where, []string{"user_id"})
	if err != nil {
		return false, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()
	return rows.Next(), rows.Err()
}

func (r *MemberRepo) Add(ctx context.Context, projectID, userID int64, role string, joinedAt int64) error {
	data := map[string]interface{}{
		"project_id": projectID,
		"user_id":    userID,
		"role":       role,
		"joined_at":  joinedAt,
	}
	sqlStr, args, err := builder.BuildInsert("project_members", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
