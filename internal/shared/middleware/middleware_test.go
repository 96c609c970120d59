package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"content-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.Any("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(), RequestID(), Logger())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS("https://blog.example"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://blog.example")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://blog.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	open := newEngine(CORS())
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anyone.example")
	assert.Equal(t, "https://anyone.example", serve(open, req).Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminAuth(t *testing.T) {
	manager := jwt.NewManager("test-secret", 0)
	r := newEngine(AdminAuth(manager))

	editor, err := manager.GenerateAccessToken("ada", jwt.RoleEditor)
	require.NoError(t, err)
	reader, err := manager.GenerateAccessToken("bob", "reader")
	require.NoError(t, err)
	foreign, err := jwt.NewManager("other-secret", 0).GenerateAccessToken("eve", jwt.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"insufficient role", "Bearer " + reader, http.StatusForbidden},
		{"editor", "Bearer " + editor, http.StatusOK},
		{"lowercase scheme", "bearer " + editor, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.status, serve(r, req).Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewIPRateLimiter(ctx, 0.001, 2)
	r := newEngine(ClientIPMiddleware(), limiter.Middleware())

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/ping", nil)
		req.RemoteAddr = ip + ":5555"
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	w := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code, "buckets are per IP")
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(ClientIPMiddleware())
	r.GET("/ip", func(c *gin.Context) { seen = ClientIP(c) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	serve(r, req)
	assert.Equal(t, "203.0.113.7", seen)
}
