package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prezentenergy/caasweb/internal/pkg/response"
)

// RequireLogin redirects anonymous visitors to the login page.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated() {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminToken guards operator endpoints with a shared token taken from the X-Admin-Token header
// or a bearer Authorization header. An empty token leaves the route open.
func AdminToken(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader("X-Admin-Token")
		if got == "" {
			parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				got = strings.TrimSpace(parts[1])
			}
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			response.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Next()
	}
}
