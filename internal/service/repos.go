package service

import (
	"context"

	"github.com/prezentenergy/caasweb/internal/model"
)

// The interfaces below are satisfied by the postgres repositories in internal/repo and by the
// in-memory store in internal/testutil.

type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) (int64, error)
	List(ctx context.Context) ([]*model.Lead, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	MarkVerified(ctx context.Context, userID string, mtime int64) error
	UpdateProfile(ctx context.Context, user *model.User) error
}

type VerificationCodeRepository interface {
	Create(ctx context.Context, code *model.VerificationCode) (int64, error)
	LatestValid(ctx context.Context, userID, purpose string, now int64) (*model.VerificationCode, error)
	MarkUsed(ctx context.Context, id int64) error
}

type SessionRepository interface {
	Get(ctx context.Context, id string, now int64) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// Transactor runs fn as one unit of work.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
