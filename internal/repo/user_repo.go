package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/prezentenergy/caasweb/internal/model"
	"github.com/prezentenergy/caasweb/internal/pkg/dbutil"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
)

var userFields = []string{
	"id", "full_name", "email", "password_hash", "address", "organization", "phone",
	"additional_info", "is_verified", "ctime", "mtime",
}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":              user.ID,
		"full_name":       user.FullName,
		"email":           user.Email,
		"password_hash":   user.PasswordHash,
		"address":         user.Address,
		"organization":    user.Organization,
		"phone":           user.Phone,
		"additional_info": user.AdditionalInfo,
		"is_verified":     user.IsVerified,
		"ctime":           user.Ctime,
		"mtime":           user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = dbutil.Conn(ctx, r.db).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := dbutil.Conn(ctx, r.db).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	var user model.User
	if err := rows.Scan(
		&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.Address, &user.Organization,
		&user.Phone, &user.AdditionalInfo, &user.IsVerified, &user.Ctime, &user.Mtime,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) MarkVerified(ctx context.Context, userID string, mtime int64) error {
	return r.update(ctx, userID, map[string]interface{}{
		"is_verified": true,
		"mtime":       mtime,
	})
}

// UpdateProfile writes every editable column of user in one statement.
func (r *UserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	return r.update(ctx, user.ID, map[string]interface{}{
		"full_name":       user.FullName,
		"address":         user.Address,
		"organization":    user.Organization,
		"phone":           user.Phone,
		"additional_info": user.AdditionalInfo,
		"password_hash":   user.PasswordHash,
		"mtime":           user.Mtime,
	})
}

func (r *UserRepo) update(ctx context.Context, userID string, update map[string]interface{}) error {
	where := map[string]interface{}{"id": userID}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := dbutil.Conn(ctx, r.db).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
