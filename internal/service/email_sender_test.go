package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prezentenergy/caasweb/internal/config"
)

func TestNewEmailSenderTypes(t *testing.T) {
	for _, typ := range []string{"", "smtp", "resend", "log"} {
		sender, err := NewEmailSender(config.MailConfig{Type: typ, Host: "localhost", Port: 25, ResendAPIKey: "re_x"})
		require.NoError(t, err, typ)
		require.NotNil(t, sender)
	}
	_, err := NewEmailSender(config.MailConfig{Type: "pigeon"})
	require.Error(t, err)
}

func TestLogSenderNeverFails(t *testing.T) {
	sender, err := NewEmailSender(config.MailConfig{Type: "log"})
	require.NoError(t, err)
	require.NoError(t, sender.Send(bg, "jane@example.com", "subject", "body 123456"))
}

func TestSMTPSenderRequiresFrom(t *testing.T) {
	sender, err := NewEmailSender(config.MailConfig{Type: "smtp", Host: "localhost", Port: 25})
	require.NoError(t, err)
	require.Error(t, sender.Send(bg, "jane@example.com", "s", "b"))
}
