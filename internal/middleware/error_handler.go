package middleware

import (
	"net/http"
	"time"

	"github.com/Zeek-James/pem-zee/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const internalErrorDetail = "Internal server error"

// ErrorHandler turns errors pushed with c.Error into an opaque 500. Handlers
// answer expected ledger failures themselves, so anything left here is a
// fault whose details stay in the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		requestLog(c, log.Error()).
			Strs("errors", c.Errors.Errors()).
			Msg("unhandled error")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrorDetail))
		}
	}
}

// Recovery converts a panic into the same opaque 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestLog(c, log.Error()).Interface("panic", r).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrorDetail))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request; 5xx responses log at error level.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		if status >= http.StatusInternalServerError {
			evt = log.Error()
		}
		requestLog(c, evt).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func requestLog(c *gin.Context, evt *zerolog.Event) *zerolog.Event {
	return evt.
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
}
