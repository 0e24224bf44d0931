package httpapi

import (
	"time"

	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/gin-gonic/gin"
)

// RequestLogger writes one line per request through log.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		if c.Writer.Status() >= 500 {
			log.Error(c.Request.Context(), "http request", args...)
			return
		}
		log.Info(c.Request.Context(), "http request", args...)
	}
}
