package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestGinMiddleware(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/data/all.parquet", func(c *gin.Context) {
		c.String(http.StatusPartialContent, "abc")
	})

	req := httptest.NewRequest(http.MethodGet, "/data/all.parquet", nil)
	req.Header.Set("Range", "bytes=0-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "/data/all.parquet", fields["path"])
	assert.Equal(t, int64(http.StatusPartialContent), fields["status"])
	assert.Equal(t, "bytes=0-2", fields["range"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok is debug", http.StatusOK, zapcore.DebugLevel},
		{"not found is warn", http.StatusNotFound, zapcore.WarnLevel},
		{"server error is error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			logs := recorded.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
		})
	}
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "Panic recovered", recorded.All()[0].Message)
}
