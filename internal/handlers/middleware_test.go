package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-quote-service/internal/logger"
)

func TestRequestID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "", "X-Request-ID", "req-42")
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = ts.do(http.MethodGet, "/health", "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "off", w.Header().Get("X-DNS-Prefetch-Control"))
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodOptions, "/quotes", "", "Origin", "http://localhost:3000")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST, PUT, DELETE", w.Header().Get("Access-Control-Allow-Methods"))

	w = ts.do(http.MethodGet, "/quotes", "", "Origin", "http://evil.example")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *HandlerConfig) {
		c.RateLimitMax = 2
		c.RateLimitWindow = time.Minute
	})

	for i := 0; i < 2; i++ {
		w := ts.do(http.MethodGet, "/quotes", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := ts.do(http.MethodGet, "/quotes", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"Too many requests"}`, w.Body.String())
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	ts := newTestServer(t, func(c *HandlerConfig) {
		c.RateLimitMax = 2
		c.RateLimitWindow = time.Minute
	})

	for i, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		w := ts.do(http.MethodGet, "/quotes", "", "X-Forwarded-For", ip)
		require.Equal(t, http.StatusOK, w.Code, i)
	}
	w := ts.do(http.MethodGet, "/quotes", "", "X-Forwarded-For", "10.0.0.3")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	// httptest requests come from 192.0.2.1
	ts := newTestServer(t, func(c *HandlerConfig) {
		c.RateLimitMax = 1
		c.RateLimitWindow = time.Minute
		c.TrustedProxies = []string{"192.0.2.0/24"}
	})

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		w := ts.do(http.MethodGet, "/quotes", "", "X-Forwarded-For", ip)
		require.Equal(t, http.StatusOK, w.Code, ip)
	}
	w := ts.do(http.MethodGet, "/quotes", "", "X-Forwarded-For", "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestClientKey_BareRemoteAddr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))

	var got string
	r.GET("/", func(c *gin.Context) { got = clientKey(c) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7"
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.9.9.9")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "192.0.2.1", got)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("1.2.3.4"))
	assert.False(t, l.allow("1.2.3.4"))
	assert.True(t, l.allow("5.6.7.8"))

	now = now.Add(time.Minute)
	assert.True(t, l.allow("1.2.3.4"))
	assert.Len(t, l.buckets, 1)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		env        string
		wantDetail bool
	}{
		{env: "development", wantDetail: true},
		{env: "production", wantDetail: false},
	} {
		r := gin.New()
		r.Use(RequestID(), Recovery(errorResponder{log: logger.Nop(), production: tc.env == "production"}))
		r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, w.Code, tc.env)

		body := decode[map[string]string](t, w)
		assert.Equal(t, "Internal server error", body["message"])
		_, hasDetail := body["error"]
		assert.Equal(t, tc.wantDetail, hasDetail, tc.env)
	}
}
