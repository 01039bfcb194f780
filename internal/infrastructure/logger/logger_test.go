package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/acefarmer/backend/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	t.Run("builds a logger for every format", func(t *testing.T) {
		for _, format := range []string{"json", "console"} {
			l := New(&config.LogConfig{Level: "debug", Format: format, Output: "stdout"})
			require.NotNil(t, l)
		}
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		l := New(&config.LogConfig{Level: "loud", Format: "json", Output: "stdout"})
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("logs a request with status and request id", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(RequestIDMiddleware(), GinMiddleware(zap.New(core)))
		router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-42")
		router.ServeHTTP(w, req)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "HTTP Request", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("recovery turns panics into 500s", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		router := gin.New()
		router.Use(RequestIDMiddleware(), Recovery(zap.New(core)))
		router.GET("/boom", func(c *gin.Context) { panic("kaput") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Panic recovered", logs.All()[0].Message)
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, MapGormLogLevel("silent"), MapGormLogLevel("silent"))
	assert.NotEqual(t, MapGormLogLevel("error"), MapGormLogLevel("info"))
}
