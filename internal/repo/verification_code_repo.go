package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/prezentenergy/caasweb/internal/model"
	"github.com/prezentenergy/caasweb/internal/pkg/dbutil"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
)

type VerificationCodeRepo struct {
	db *sql.DB
}

func NewVerificationCodeRepo(db *sql.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) Create(ctx context.Context, code *model.VerificationCode) (int64, error) {
	data := map[string]interface{}{
		"user_id":    code.UserID,
		"purpose":    code.Purpose,
		"code_hash":  code.CodeHash,
		"used":       code.Used,
		"ctime":      code.Ctime,
		"expires_at": code.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("verification_codes", []map[string]interface{}{data})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)
	var id int64
	if err := dbutil.Conn(ctx, r.db).QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return 0, err
	}
	code.ID = id
	return id, nil
}

// LatestValid returns the newest unused code for (userID, purpose) that has not expired at now.
func (r *VerificationCodeRepo) LatestValid(ctx context.Context, userID, purpose string, now int64) (*model.VerificationCode, error) {
	where := map[string]interface{}{
		"user_id":      userID,
		"purpose":      purpose,
		"used":         false,
		"expires_at >": now,
		"_orderby":     "id desc",
		"_limit":       []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("verification_codes", where, []string{"id", "user_id", "purpose", "code_hash", "used", "ctime", "expires_at"})
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
	var code model.VerificationCode
	if err := rows.Scan(&code.ID, &code.UserID, &code.Purpose, &code.CodeHash, &code.Used, &code.Ctime, &code.ExpiresAt); err != nil {
		return nil, err
	}
	return &code, nil
}

// MarkUsed flips used only while it is still false, so a code can be consumed once even when
// two requests race on it. ErrNotFound means somebody else won.
func (r *VerificationCodeRepo) MarkUsed(ctx context.Context, id int64) error {
	where := map[string]interface{}{"id": id, "used": false}
	update := map[string]interface{}{"used": true}
	sqlStr, args, err := builder.BuildUpdate("verification_codes", where, update)
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
