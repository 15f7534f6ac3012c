package service

import (
	"context"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/prezentenergy/caasweb/internal/pkg/password"
	"github.com/prezentenergy/caasweb/internal/testutil"
)

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type authFixture struct {
	store    *testutil.Store
	mail     *testutil.MailBox
	verifier *VerificationService
	auth     *AuthService
	clock    *clock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := testutil.NewStore()
	mail := &testutil.MailBox{}
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	verifier := NewVerificationService(store.Codes, mail, "")
	verifier.now = c.Now
	auth := NewAuthService(store.Users, store.Sessions, verifier, store, time.Hour)
	auth.now = c.Now
	return &authFixture{store: store, mail: mail, verifier: verifier, auth: auth, clock: c}
}

var bg = context.Background()
