package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kattn/djgenetics/internal/logger"
	"github.com/kattn/djgenetics/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/test200", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/test404", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found"})
	})
	router.GET("/test500", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error"})
	})
	return router
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func serve(router *gin.Engine, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestIDGenerated(t *testing.T) {
	observe(t)
	router := newRouter(t, RequestIDMiddleware())

	w := serve(router, "/test200", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestRequestIDPropagated(t *testing.T) {
	logs := observe(t)
	router := newRouter(t, RequestIDMiddleware())

	w := serve(router, "/test200", http.Header{"X-Request-Id": {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	started := logs.FilterMessage("request started").All()
	if assert.Len(t, started, 1) {
		assert.Equal(t, "abc-123", started[0].ContextMap()["request_id"])
	}
}

func TestRequestIDLogsRouteTemplate(t *testing.T) {
	logs := observe(t)
	router := newRouter(t, RequestIDMiddleware())
	router.GET("/rolls/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	serve(router, "/rolls/42", nil)
	serve(router, "/nowhere", nil)

	completed := logs.FilterMessage("request completed").All()
	if assert.Len(t, completed, 2) {
		fields := completed[0].ContextMap()
		assert.Equal(t, "/rolls/:id", fields["route"])
		assert.NotContains(t, fields, "path")
		assert.EqualValues(t, http.StatusNoContent, fields["status"])
		assert.Contains(t, fields, "latency")

		fields = completed[1].ContextMap()
		assert.Equal(t, "unmatched", fields["route"])
		assert.Equal(t, "/nowhere", fields["path"])
		assert.EqualValues(t, http.StatusNotFound, fields["status"])
	}
}

func TestGinLoggerLevels(t *testing.T) {
	logs := observe(t)
	router := newRouter(t, RequestIDMiddleware(), GinLoggerMiddleware())

	serve(router, "/test200", nil)
	serve(router, "/test404", nil)
	serve(router, "/test500", nil)

	requests := logs.FilterMessage("HTTP request").All()
	if assert.Len(t, requests, 3) {
		assert.Equal(t, zap.InfoLevel, requests[0].Level)
		assert.Equal(t, zap.WarnLevel, requests[1].Level)
		assert.Equal(t, zap.ErrorLevel, requests[2].Level)

		fields := requests[1].ContextMap()
		assert.Equal(t, "/test404", fields["path"])
		assert.EqualValues(t, http.StatusNotFound, fields["status"])
		assert.NotEmpty(t, fields["request_id"])
	}
}

func TestMetricsMiddlewareStatusCodesAreNumeric(t *testing.T) {
	observe(t)
	m := metrics.Initialize()
	m.HTTPRequestsTotal.Reset()

	router := newRouter(t, MetricsMiddleware())
	serve(router, "/test200", nil)
	serve(router, "/test200", nil)
	serve(router, "/test404", nil)
	serve(router, "/test500", nil)
	serve(router, "/nowhere", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/test200", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/test404", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/test500", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/test200", "OK")))
}

func TestRecordConversion(t *testing.T) {
	m := metrics.Get()
	m.ConversionsTotal.Reset()
	m.ErrorsTotal.Reset()

	RecordConversion("encode", time.Millisecond, nil)
	RecordConversion("encode", time.Millisecond, errors.New("bad roll"))
	RecordConversion("decode", time.Millisecond, nil)
	RecordError("invalid_roll", "/api/v1/rolls/encode")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("encode", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("encode", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("decode", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("invalid_roll", "/api/v1/rolls/encode")))
}
