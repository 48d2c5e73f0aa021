package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nourishtogether/donation-api/internal/constants"
	"github.com/rs/zerolog"
)

// RequestLogger tags each request with an id and a child logger reachable
// through zerolog.Ctx, then writes one access line when it completes.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(constants.HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(constants.HeaderRequestID, reqID)
		c.Set(constants.ContextKeyRequestID, reqID)

		logger := base.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := zerolog.Ctx(c.Request.Context()).Info()
		switch {
		case status >= 500:
			event = zerolog.Ctx(c.Request.Context()).Error()
		case status >= 400:
			event = zerolog.Ctx(c.Request.Context()).Warn()
		}
		event.
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("request.complete")
	}
}
