package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/resendlabs/resend-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/prezentenergy/caasweb/internal/config"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
)

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

func NewEmailSender(cfg config.MailConfig) (EmailSender, error) {
	switch cfg.Type {
	case "", "smtp":
		return &smtpSender{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}, nil
	case "resend":
		return &resendSender{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}, nil
	case "log":
		return logSender{}, nil
	default:
		return nil, fmt.Errorf("unsupported mail type: %s", cfg.Type)
	}
}

type smtpSender struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	from := strings.TrimSpace(s.cfg.From)
	if from == "" {
		from = strings.TrimSpace(s.cfg.Username)
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || from == "" {
		return appErr.ErrInvalid
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

type resendSender struct {
	client *resend.Client
	from   string
}

func (s *resendSender) Send(ctx context.Context, to, subject, body string) error {
	if s.from == "" {
		return appErr.ErrInvalid
	}
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

// logSender writes mail to the log instead of delivering it. Meant for local development.
type logSender struct{}

func (logSender) Send(ctx context.Context, to, subject, body string) error {
	logutil.GetLogger(ctx).Info("mail not delivered (log sender)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
