package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/prezentenergy/caasweb/internal/model"
	"github.com/prezentenergy/caasweb/internal/pkg/dbutil"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Get returns the session unless it is missing or expired at now.
func (r *SessionRepo) Get(ctx context.Context, id string, now int64) (*model.Session, error) {
	where := map[string]interface{}{
		"id":           id,
		"expires_at >": now,
	}
	fields := []string{"id", "user_id", "pending_user_id", "pending_purpose", "pending_profile", "flash", "flash_kind", "ctime", "mtime", "expires_at"}
	sqlStr, args, err := builder.BuildSelect("sessions", where, fields)
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
	var s model.Session
	if err := rows.Scan(&s.ID, &s.UserID, &s.PendingUserID, &s.PendingPurpose, &s.PendingProfile, &s.Flash, &s.FlashKind, &s.Ctime, &s.Mtime, &s.ExpiresAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, pending_user_id, pending_purpose, pending_profile, flash, flash_kind, ctime, mtime, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			pending_user_id = EXCLUDED.pending_user_id,
			pending_purpose = EXCLUDED.pending_purpose,
			pending_profile = EXCLUDED.pending_profile,
			flash = EXCLUDED.flash,
			flash_kind = EXCLUDED.flash_kind,
			mtime = EXCLUDED.mtime,
			expires_at = EXCLUDED.expires_at
	`
	_, err := dbutil.Conn(ctx, r.db).ExecContext(ctx, query,
		s.ID, s.UserID, s.PendingUserID, s.PendingPurpose, s.PendingProfile,
		s.Flash, s.FlashKind, s.Ctime, s.Mtime, s.ExpiresAt,
	)
	return err
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	_, err := dbutil.Conn(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	res, err := dbutil.Conn(ctx, r.db).ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
