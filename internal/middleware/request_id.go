package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kattn/djgenetics/internal/logger"
	"go.uber.org/zap"
)

// RequestIDKey is the context key holding the request ID
const RequestIDKey = "request_id"

// RequestIDMiddleware tags each request with an ID, kept from the
// X-Request-ID header when the client sent one, echoes it on the response
// and brackets the request with debug entries carrying the ID and the
// matched route.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		// Route templates keep one entry shape per endpoint; the raw
		// path is only useful for unmatched requests
		fields := []zap.Field{
			logger.WithRequestID(requestID),
			zap.String("method", c.Request.Method),
			zap.String("route", routePath(c)),
		}
		if c.FullPath() == "" {
			fields = append(fields, zap.String("path", c.Request.URL.Path))
		}
		fields = slices.Clip(fields)

		logger.Log.Debug("request started", append(fields, logger.WithIP(c.ClientIP()))...)
		start := time.Now()

		c.Next()

		logger.Log.Debug("request completed", append(fields,
			logger.WithStatus(c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)...)
	}
}

// RequestID returns the ID set by RequestIDMiddleware, or ""
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
