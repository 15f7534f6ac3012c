package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/prezentenergy/caasweb/internal/model"
	"github.com/prezentenergy/caasweb/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterBlocksAfterMaxWithinWindow(t *testing.T) {
	now := time.Now()
	limiter := newRateLimiter(10*time.Second, 2)
	limiter.now = func() time.Time { return now }

	run := func() *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("POST", "/api/leads", nil)
		limiter.handle(c)
		return c
	}
	require.False(t, run().IsAborted())
	require.False(t, run().IsAborted())
	blocked := run()
	require.True(t, blocked.IsAborted())
	require.Equal(t, http.StatusTooManyRequests, blocked.Writer.Status())

	now = now.Add(10 * time.Second)
	require.False(t, run().IsAborted())
}

func TestRateLimiterKeysByPath(t *testing.T) {
	limiter := newRateLimiter(time.Minute, 1)
	require.True(t, limiter.allow("1.2.3.4|/api/leads"))
	require.False(t, limiter.allow("1.2.3.4|/api/leads"))
	require.True(t, limiter.allow("1.2.3.4|/api/chat"))
	require.True(t, limiter.allow("5.6.7.8|/api/leads"))
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := newRateLimiter(0, 1)
	for i := 0; i < 5; i++ {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("POST", "/api/leads", nil)
		limiter.handle(c)
		require.False(t, c.IsAborted())
	}
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(200, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)
	require.Equal(t, "abc", w.Header().Get(RequestIDHeader))
	require.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	require.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestCORSAllowlist(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://prezent.energy"}))
	r.POST("/x", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "https://prezent.energy")
	r.ServeHTTP(w, req)
	require.Equal(t, 204, w.Code)
	require.Equal(t, "https://prezent.energy", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminToken(t *testing.T) {
	r := gin.New()
	r.GET("/open", AdminToken(""), func(c *gin.Context) { c.Status(200) })
	r.GET("/closed", AdminToken("s3cret"), func(c *gin.Context) { c.Status(200) })

	cases := []struct {
		path, header, value string
		code                int
	}{
		{"/open", "", "", 200},
		{"/closed", "", "", 401},
		{"/closed", "X-Admin-Token", "wrong", 401},
		{"/closed", "X-Admin-Token", "s3cret", 200},
		{"/closed", "Authorization", "Bearer s3cret", 200},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", tc.path, nil)
		if tc.header != "" {
			req.Header.Set(tc.header, tc.value)
		}
		r.ServeHTTP(w, req)
		require.Equal(t, tc.code, w.Code, "%s %s", tc.path, tc.value)
	}
}

type mapLoader map[string]*model.Session

func (m mapLoader) LoadSession(ctx context.Context, id string) (*model.Session, error) {
	if sess, ok := m[id]; ok {
		return sess, nil
	}
	return &model.Session{ID: id}, nil
}

func TestSessionMiddleware(t *testing.T) {
	cookie := &SessionCookie{Name: "caas_session", Secret: []byte("k"), TTL: time.Hour}
	loader := mapLoader{"known": {ID: "known", UserID: "u1"}}
	r := gin.New()
	r.Use(Session(loader, cookie))
	r.GET("/me", func(c *gin.Context) { c.String(200, CurrentSession(c).UserID) })
	r.GET("/account", RequireLogin("/auth/login"), func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))
	require.Equal(t, "", w.Body.String())
	require.Len(t, w.Result().Cookies(), 1)

	token, err := jwt.GenerateToken("known", []byte("k"), time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "caas_session", Value: token})
	r.ServeHTTP(w, req)
	require.Equal(t, "u1", w.Body.String())
	require.Empty(t, w.Result().Cookies())

	forged, err := jwt.GenerateToken("known", []byte("other"), time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/account", nil)
	req.AddCookie(&http.Cookie{Name: "caas_session", Value: forged})
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/auth/login", w.Header().Get("Location"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/echo", BodyLimit(16), func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, string(raw))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/echo", strings.NewReader("small")))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "small", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/echo", strings.NewReader(strings.Repeat("x", 17))))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.JSONEq(t, `{"error":"request body too large (max 1KB)"}`, w.Body.String())

	req := httptest.NewRequest("POST", "/echo", strings.NewReader(strings.Repeat("x", 17)))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFormatBodyLimit(t *testing.T) {
	require.Equal(t, "1KB", formatBodyLimit(100))
	require.Equal(t, "64KB", formatBodyLimit(64*1024))
	require.Equal(t, "2MB", formatBodyLimit(2*1024*1024))
}
