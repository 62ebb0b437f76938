package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/teamboardhq/teamboard/internal/model"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
		"ctime":    user.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	user.ID, err = result.LastInsertId()
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("users", where, []string{"id", "username", "email", "ctime"})
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
	var u model.User
	if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Ctime); err != nil {
		return nil, err
	}
	return &u, nil
}
