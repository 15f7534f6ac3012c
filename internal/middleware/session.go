package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/model"
	"github.com/prezentenergy/caasweb/internal/pkg/jwt"
	"github.com/prezentenergy/caasweb/internal/pkg/response"
)

const ContextSessionKey = "session"

type SessionLoader interface {
	LoadSession(ctx context.Context, id string) (*model.Session, error)
}

// SessionCookie signs the session id into an HTTP-only cookie.
type SessionCookie struct {
	Name   string
	Secret []byte
	TTL    time.Duration
	Secure bool
}

func (sc *SessionCookie) Write(c *gin.Context, sid string) error {
	token, err := jwt.GenerateToken(sid, sc.Secret, sc.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sc.TTL.Seconds()),
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// sessionID returns the id carried by the request cookie, and whether the cookie should be reissued.
func (sc *SessionCookie) sessionID(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(sc.Name)
	if err != nil || raw == "" {
		return "", true
	}
	claims, err := jwt.ParseToken(raw, sc.Secret)
	if err != nil {
		return "", true
	}
	refresh := claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) > sc.TTL/2
	return claims.SessionID, refresh
}

// Session loads the visitor's session, starting an anonymous one when the cookie is missing,
// forged or expired.
func Session(loader SessionLoader, cookie *SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, refresh := cookie.sessionID(c)
		if sid == "" {
			sid = uuid.NewString()
		}
		sess, err := loader.LoadSession(c.Request.Context(), sid)
		if err != nil {
			logutil.GetLogger(c.Request.Context()).Error("load session failed", zap.Error(err))
			response.Fail(c, http.StatusInternalServerError, "internal error")
			return
		}
		if refresh {
			if err := cookie.Write(c, sess.ID); err != nil {
				logutil.GetLogger(c.Request.Context()).Error("write session cookie failed", zap.Error(err))
				response.Fail(c, http.StatusInternalServerError, "internal error")
				return
			}
		}
		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session loaded by Session, or an empty anonymous one.
func CurrentSession(c *gin.Context) *model.Session {
	if v, ok := c.Get(ContextSessionKey); ok {
		if sess, ok := v.(*model.Session); ok && sess != nil {
			return sess
		}
	}
	return &model.Session{}
}

// SetSession replaces the request's session, reissuing the cookie when the id changed.
func SetSession(c *gin.Context, cookie *SessionCookie, sess *model.Session) error {
	prev := CurrentSession(c)
	c.Set(ContextSessionKey, sess)
	if prev.ID == sess.ID {
		return nil
	}
	return cookie.Write(c, sess.ID)
}
