package gin

import (
	"time"

	ginlib "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns each request an id, reusing the caller's when present.
func RequestID() ginlib.HandlerFunc {
	return func(c *ginlib.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(log logger.Logger) ginlib.HandlerFunc {
	return func(c *ginlib.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()),
			logger.String("request_id", c.GetString("request_id")),
		}

		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
