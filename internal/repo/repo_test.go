package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prezentenergy/caasweb/internal/model"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
	"github.com/prezentenergy/caasweb/internal/pkg/timeutil"
	"github.com/prezentenergy/caasweb/internal/repo"
	"github.com/prezentenergy/caasweb/internal/testutil"
)

func strPtr(v string) *string { return &v }

func TestLeadRepoCreateAndList(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	leads := repo.NewLeadRepo(db)
	ctx := context.Background()
	first, err := leads.Create(ctx, &model.Lead{FullName: "Jane", Email: "jane@example.com", Ctime: 100})
	require.NoError(t, err)
	second, err := leads.Create(ctx, &model.Lead{FullName: "Joe", Email: "joe@example.com", Phone: strPtr("555"), Ctime: 200})
	require.NoError(t, err)
	require.Greater(t, second, first)

	list, err := leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Joe", list[0].FullName)
	require.Equal(t, "555", *list[0].Phone)
	require.Nil(t, list[1].Phone)
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	ctx := context.Background()
	now := timeutil.NowUnix()
	require.NoError(t, users.Create(ctx, &model.User{ID: "u1", FullName: "A", Email: "a@example.com", PasswordHash: "h", Ctime: now, Mtime: now}))
	err := users.Create(ctx, &model.User{ID: "u2", FullName: "B", Email: "a@example.com", PasswordHash: "h", Ctime: now, Mtime: now})
	require.True(t, errors.Is(err, appErr.ErrDuplicateEmail))

	require.NoError(t, users.MarkVerified(ctx, "u1", now+1))
	user, err := users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, user.IsVerified)

	user.Phone = "123"
	require.NoError(t, users.UpdateProfile(ctx, user))
	user, err = users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "123", user.Phone)

	_, err = users.GetByID(ctx, "missing")
	require.True(t, appErr.IsNotFound(err))
}

func TestVerificationCodeRepoNewestWinsAndSingleUse(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := timeutil.NowUnix()
	users := repo.NewUserRepo(db)
	require.NoError(t, users.Create(ctx, &model.User{ID: "u1", FullName: "A", Email: "a@example.com", PasswordHash: "h", Ctime: now, Mtime: now}))

	codes := repo.NewVerificationCodeRepo(db)
	_, err := codes.Create(ctx, &model.VerificationCode{UserID: "u1", Purpose: model.PurposeLogin, CodeHash: "old", Ctime: now, ExpiresAt: now + 600})
	require.NoError(t, err)
	newest, err := codes.Create(ctx, &model.VerificationCode{UserID: "u1", Purpose: model.PurposeLogin, CodeHash: "new", Ctime: now, ExpiresAt: now + 600})
	require.NoError(t, err)

	item, err := codes.LatestValid(ctx, "u1", model.PurposeLogin, now)
	require.NoError(t, err)
	require.Equal(t, newest, item.ID)
	require.Equal(t, "new", item.CodeHash)

	require.NoError(t, codes.MarkUsed(ctx, newest))
	require.True(t, appErr.IsNotFound(codes.MarkUsed(ctx, newest)))

	_, err = codes.LatestValid(ctx, "u1", model.PurposeLogin, now+601)
	require.True(t, appErr.IsNotFound(err))
}

func TestSessionRepoUpsertAndExpiry(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	sessions := repo.NewSessionRepo(db)
	sess := &model.Session{ID: "s1", Ctime: 100, Mtime: 100, ExpiresAt: 200}
	require.NoError(t, sessions.Save(ctx, sess))
	sess.SetPending("u1", model.PurposeLogin)
	require.NoError(t, sessions.Save(ctx, sess))

	got, err := sessions.Get(ctx, "s1", 150)
	require.NoError(t, err)
	require.Equal(t, model.PurposeLogin, got.PendingPurpose)

	_, err = sessions.Get(ctx, "s1", 200)
	require.True(t, appErr.IsNotFound(err))

	n, err := sessions.DeleteExpired(ctx, 300)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestTxManagerRollsBack(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	ctx := context.Background()
	leads := repo.NewLeadRepo(db)
	boom := errors.New("boom")
	err := repo.NewTxManager(db).InTx(ctx, func(ctx context.Context) error {
		if _, err := leads.Create(ctx, &model.Lead{FullName: "Jane", Email: "jane@example.com", Ctime: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	list, err := leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 0)
}
