package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/model"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
	"github.com/prezentenergy/caasweb/internal/pkg/password"
)

type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Address         string
	Organization    string
	Phone           string
	AdditionalInfo  string
}

// AccountUpdateInput mirrors the settings form. Nil fields were not submitted.
type AccountUpdateInput struct {
	FullName        *string
	Address         *string
	Organization    *string
	Phone           *string
	AdditionalInfo  *string
	NewPassword     string
	ConfirmPassword string
}

type AuthService struct {
	users      UserRepository
	sessions   SessionRepository
	verifier   *VerificationService
	tx         Transactor
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(users UserRepository, sessions SessionRepository, verifier *VerificationService, tx Transactor, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		verifier:   verifier,
		tx:         tx,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// LoadSession returns the stored session for id, or a fresh anonymous one when nothing is stored.
func (s *AuthService) LoadSession(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.sessions.Get(ctx, id, s.now().Unix())
	if err != nil {
		if appErr.IsNotFound(err) {
			return &model.Session{ID: id}, nil
		}
		return nil, err
	}
	return sess, nil
}

func (s *AuthService) saveSession(ctx context.Context, sess *model.Session) error {
	now := s.now()
	if sess.Ctime == 0 {
		sess.Ctime = now.Unix()
	}
	sess.Mtime = now.Unix()
	sess.ExpiresAt = now.Add(s.sessionTTL).Unix()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Flash stores a one-shot message on the session.
func (s *AuthService) Flash(ctx context.Context, sess *model.Session, kind, msg string) error {
	sess.SetFlash(kind, msg)
	return s.saveSession(ctx, sess)
}

// PopFlash returns and clears the session's flash message.
func (s *AuthService) PopFlash(ctx context.Context, sess *model.Session) (string, string, error) {
	kind, msg := sess.PopFlash()
	if msg == "" {
		return "", "", nil
	}
	if err := s.saveSession(ctx, sess); err != nil {
		return "", "", err
	}
	return kind, msg, nil
}

func (s *AuthService) Register(ctx context.Context, sess *model.Session, in RegisterInput) error {
	fullName := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)
	plain := in.Password
	if fullName == "" || email == "" || plain == "" {
		return appErr.Invalid("Full name, email, and password are required.")
	}
	if plain != in.ConfirmPassword {
		return appErr.Invalid("Passwords do not match.")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return appErr.ErrDuplicateEmail
	} else if !appErr.IsNotFound(err) {
		return err
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	user := &model.User{
		ID:             newID(),
		FullName:       fullName,
		Email:          email,
		PasswordHash:   hash,
		Address:        strings.TrimSpace(in.Address),
		Organization:   strings.TrimSpace(in.Organization),
		Phone:          strings.TrimSpace(in.Phone),
		AdditionalInfo: strings.TrimSpace(in.AdditionalInfo),
		Ctime:          now,
		Mtime:          now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	// Pending state is saved before mailing so a failed send can be retried with ResendCode.
	sess.ClearPending()
	sess.SetPending(user.ID, model.PurposeRegister)
	if err := s.saveSession(ctx, sess); err != nil {
		return err
	}
	return s.verifier.Issue(ctx, user, model.PurposeRegister)
}

func (s *AuthService) Login(ctx context.Context, sess *model.Session, email, plain string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrInvalidCredentials
		}
		return err
	}
	if !password.Matches(user.PasswordHash, plain) {
		return appErr.ErrInvalidCredentials
	}
	sess.ClearPending()
	sess.SetPending(user.ID, model.PurposeLogin)
	if err := s.saveSession(ctx, sess); err != nil {
		return err
	}
	return s.verifier.Issue(ctx, user, model.PurposeLogin)
}

// Verify consumes code for the session's pending purpose and returns that purpose.
// The returned session replaces sess: authenticating rotates the session id.
func (s *AuthService) Verify(ctx context.Context, sess *model.Session, code string) (*model.Session, string, error) {
	if !sess.Pending() {
		return sess, "", appErr.Invalid("Session expired. Please start again.")
	}
	purpose := sess.PendingPurpose
	userID := sess.PendingUserID
	next := *sess
	next.ClearPending()
	var apply func(ctx context.Context) error
	switch purpose {
	case model.PurposeRegister:
		apply = func(ctx context.Context) error {
			return s.users.MarkVerified(ctx, userID, s.now().Unix())
		}
	case model.PurposeLogin:
		apply = func(ctx context.Context) error { return nil }
	case model.PurposeSettings:
		if sess.UserID != userID {
			if err := s.saveSession(ctx, &next); err != nil {
				return sess, purpose, err
			}
			return &next, purpose, appErr.ErrUnauthorized
		}
		change, err := stagedProfileChange(sess)
		if err != nil {
			return sess, purpose, err
		}
		apply = func(ctx context.Context) error {
			user, err := s.users.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			change.Apply(user)
			user.Mtime = s.now().Unix()
			return s.users.UpdateProfile(ctx, user)
		}
	default:
		return sess, purpose, appErr.Invalid("Unknown verification purpose.")
	}
	rotate := purpose != model.PurposeSettings
	if rotate {
		next.ID = NewSessionID()
		next.Ctime = 0
		next.UserID = userID
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.verifier.Validate(ctx, userID, purpose, code); err != nil {
			return err
		}
		if err := apply(ctx); err != nil {
			return err
		}
		if rotate {
			if err := s.sessions.Delete(ctx, sess.ID); err != nil {
				return err
			}
		}
		return s.saveSession(ctx, &next)
	})
	if err != nil {
		return sess, purpose, err
	}
	logutil.GetLogger(ctx).Info("verification succeeded",
		zap.String("user_id", userID), zap.String("purpose", purpose))
	return &next, purpose, nil
}

// ResendCode issues a new code for the session's pending verification.
func (s *AuthService) ResendCode(ctx context.Context, sess *model.Session) error {
	if !sess.Pending() {
		return appErr.Invalid("Session expired. Please start again.")
	}
	user, err := s.users.GetByID(ctx, sess.PendingUserID)
	if err != nil {
		return err
	}
	return s.verifier.Issue(ctx, user, sess.PendingPurpose)
}

// StageAccountUpdate parks the edit on the session and mails a settings code. The session stays signed in.
func (s *AuthService) StageAccountUpdate(ctx context.Context, sess *model.Session, in AccountUpdateInput) error {
	if !sess.Authenticated() {
		return appErr.ErrUnauthorized
	}
	newPassword := in.NewPassword
	if newPassword != "" && newPassword != in.ConfirmPassword {
		return appErr.Invalid("New passwords do not match.")
	}
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	change := &ProfileChange{
		FullName:       trimmed(in.FullName),
		Address:        trimmed(in.Address),
		Organization:   trimmed(in.Organization),
		Phone:          trimmed(in.Phone),
		AdditionalInfo: trimmed(in.AdditionalInfo),
	}
	if newPassword != "" {
		hash, err := password.Hash(newPassword)
		if err != nil {
			return err
		}
		change.PasswordHash = hash
	}
	if err := change.Stage(sess, user.ID); err != nil {
		return err
	}
	if err := s.saveSession(ctx, sess); err != nil {
		return err
	}
	return s.verifier.Issue(ctx, user, model.PurposeSettings)
}

// CancelPending discards the pending verification and any staged account edit.
func (s *AuthService) CancelPending(ctx context.Context, sess *model.Session) error {
	DiscardProfileChange(sess)
	return s.saveSession(ctx, sess)
}

// Logout deletes the session and returns a fresh anonymous one carrying the sign-out flash.
// The returned session is never nil, so callers can drop the old cookie even when err is set.
func (s *AuthService) Logout(ctx context.Context, sess *model.Session) (*model.Session, error) {
	next := &model.Session{ID: NewSessionID()}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return next, fmt.Errorf("delete session: %w", err)
	}
	if err := s.Flash(ctx, next, model.FlashSuccess, "You have been signed out."); err != nil {
		return next, err
	}
	return next, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, sess *model.Session) (*model.User, error) {
	if !sess.Authenticated() {
		return nil, appErr.ErrUnauthorized
	}
	return s.users.GetByID(ctx, sess.UserID)
}

// CleanupSessions removes expired sessions.
func (s *AuthService) CleanupSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now().Unix())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	return &out
}
