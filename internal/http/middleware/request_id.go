package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID tags every request with an id, echoes it back and logs the
// request once it completes.
func RequestID(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)
		ctx := context.WithValue(c.Request.Context(), requestIDKey{}, rid)
		ctx = log.With().Str("request_id", rid).Logger().WithContext(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.Info()
		if status >= 500 {
			entry = log.Error()
		} else if status >= 400 {
			entry = log.Warn()
		}
		entry.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}
