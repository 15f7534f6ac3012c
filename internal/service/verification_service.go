package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/model"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
	"github.com/prezentenergy/caasweb/internal/pkg/password"
)

const (
	verificationExpireMinutes  = 10
	verificationCodeDigits     = 6
	defaultVerificationSubject = "Your Prezent.Energy verification code"
)

type VerificationService struct {
	codes   VerificationCodeRepository
	sender  EmailSender
	subject string
	now     func() time.Time
}

func NewVerificationService(codes VerificationCodeRepository, sender EmailSender, subject string) *VerificationService {
	if subject == "" {
		subject = defaultVerificationSubject
	}
	return &VerificationService{codes: codes, sender: sender, subject: subject, now: time.Now}
}

// Issue stores a fresh code for user and purpose and mails it. Earlier codes stay in the table
// but Validate only ever looks at the newest one.
func (s *VerificationService) Issue(ctx context.Context, user *model.User, purpose string) error {
	if user == nil || !model.ValidPurpose(purpose) {
		return appErr.ErrInvalid
	}
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := password.Hash(code)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	item := &model.VerificationCode{
		UserID:    user.ID,
		Purpose:   purpose,
		CodeHash:  hash,
		Ctime:     now,
		ExpiresAt: now + int64(verificationExpireMinutes*60),
	}
	id, err := s.codes.Create(ctx, item)
	if err != nil {
		return fmt.Errorf("store code: %w", err)
	}
	if err := s.sender.Send(ctx, user.Email, s.subject, verificationBody(user.FullName, purpose, code)); err != nil {
		logutil.GetLogger(ctx).Error("send verification code failed",
			zap.String("user_id", user.ID), zap.String("purpose", purpose), zap.Error(err))
		return fmt.Errorf("send code: %w", err)
	}
	logutil.GetLogger(ctx).Info("verification code issued",
		zap.String("user_id", user.ID), zap.String("purpose", purpose), zap.Int64("code_id", id))
	return nil
}

// Validate consumes the newest unused, unexpired code for user and purpose when it matches submitted.
func (s *VerificationService) Validate(ctx context.Context, userID, purpose, submitted string) error {
	item, err := s.codes.LatestValid(ctx, userID, purpose, s.now().Unix())
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrCodeNotFound
		}
		return err
	}
	if !password.Matches(item.CodeHash, strings.TrimSpace(submitted)) {
		return appErr.ErrCodeMismatch
	}
	if err := s.codes.MarkUsed(ctx, item.ID); err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrCodeNotFound
		}
		return err
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", verificationCodeDigits, n.Int64()), nil
}

func purposeLabel(purpose string) string {
	switch purpose {
	case model.PurposeRegister:
		return "complete your registration"
	case model.PurposeLogin:
		return "sign in to your account"
	case model.PurposeSettings:
		return "confirm your account changes"
	}
	return "verify your identity"
}

func verificationBody(name, purpose, code string) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	return fmt.Sprintf(`Hi %s,

Use the code below to %s:

    %s

This code expires in %d minutes. If you did not request it, you can ignore this email.

Prezent.Energy
`, name, purposeLabel(purpose), code, verificationExpireMinutes)
}
