package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wabalerts/internal/common"
	"wabalerts/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestAuth(t *testing.T) {
	r := gin.New()
	r.Use(Auth([]string{"key-one", "key-two"}))
	r.GET("/", okHandler)

	tests := []struct {
		name     string
		key      string
		wantCode int
		wantBody string
	}{
		{name: "first key", key: "key-one", wantCode: http.StatusOK},
		{name: "second key", key: "key-two", wantCode: http.StatusOK},
		{name: "missing", wantCode: http.StatusUnauthorized, wantBody: "missing X-API-Key header"},
		{name: "wrong", key: "key-three", wantCode: http.StatusUnauthorized, wantBody: "invalid API key"},
		{name: "prefix of a valid key", key: "key-", wantCode: http.StatusUnauthorized, wantBody: "invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set(apiKeyHeader, tt.key)
			}

			w := serve(r, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuth_BearerToken(t *testing.T) {
	r := gin.New()
	r.Use(Auth([]string{"key-one"}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(common.CallerKey)) })

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "bearer", header: "Bearer key-one", wantCode: http.StatusOK},
		{name: "lowercase scheme", header: "bearer key-one", wantCode: http.StatusOK},
		{name: "wrong token", header: "Bearer key-two", wantCode: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic a2V5LW9uZQ==", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)

			w := serve(r, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Len(t, w.Body.String(), 8)
				assert.NotContains(t, w.Body.String(), "key-one")
			}
		})
	}
}

func TestAuth_EmptyConfiguredKeyIgnored(t *testing.T) {
	r := gin.New()
	r.Use(Auth([]string{"", "key-one"}))
	r.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(apiKeyHeader, "key-one")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestAuth_NoKeysConfigured(t *testing.T) {
	r := gin.New()
	r.Use(Auth(nil))
	r.GET("/", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(apiKeyHeader, "anything")

	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", okHandler)

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":40000"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	clock := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	require.Equal(t, 2, rl.Len())

	clock = clock.Add(30 * time.Second)
	rl.getLimiter("10.0.0.2")
	assert.Equal(t, 2, rl.Len())

	clock = clock.Add(45 * time.Second)
	rl.getLimiter("10.0.0.3")
	assert.Equal(t, 2, rl.Len(), "10.0.0.1 idle for 75s is evicted")

	rl.mu.Lock()
	_, kept := rl.limiters["10.0.0.2"]
	rl.mu.Unlock()
	assert.True(t, kept)
}

func TestRateLimiter_NoEvictionWithoutTTL(t *testing.T) {
	rl := NewRateLimiter(1, 1, 0)
	clock := time.Now()
	rl.now = func() time.Time { return clock }

	rl.getLimiter("10.0.0.1")
	clock = clock.Add(24 * time.Hour)
	rl.getLimiter("10.0.0.2")

	assert.Equal(t, 2, rl.Len())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(common.RequestIDKey))
	})

	t.Run("generated", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(requestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("caller id reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "wc-hook-1042.completed")

		w := serve(r, req)

		assert.Equal(t, "wc-hook-1042.completed", w.Header().Get(requestIDHeader))
	})

	t.Run("malformed caller id replaced", func(t *testing.T) {
		for _, bad := range []string{"has spaces", "new\nline", strings.Repeat("a", 65)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestIDHeader, bad)

			w := serve(r, req)

			assert.NotEqual(t, bad, w.Header().Get(requestIDHeader))
			assert.Len(t, w.Header().Get(requestIDHeader), 36)
		}
	})
}

// exposesHeader reports whether name is listed in Access-Control-Expose-Headers,
// compared the way HTTP header names are.
func exposesHeader(h http.Header, name string) bool {
	for _, v := range h.Values("Access-Control-Expose-Headers") {
		for _, exposed := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(exposed), name) {
				return true
			}
		}
	}
	return false
}

func TestCORS(t *testing.T) {
	t.Run("configured origin", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS(config.CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}}))
		r.GET("/", okHandler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		w := serve(r, req)

		assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.True(t, exposesHeader(w.Header(), requestIDHeader), w.Header().Get("Access-Control-Expose-Headers"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
	})

	t.Run("empty config allows all origins", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS(config.CORSConfig{}))
		r.GET("/", okHandler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", okHandler)
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		serve(r, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
