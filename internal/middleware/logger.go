package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"tabsync/internal/logging"
)

// RequestLogger logs one line per request at info, errors at warn.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= 500 {
			log.Warnf("http: %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		log.Infof("http: %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
