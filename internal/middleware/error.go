package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/reservly/booking-api/pkg/httputil"
	"github.com/reservly/booking-api/pkg/logger"
)

// ErrorHandler drains errors handlers attached via c.Error and renders the
// last one through the shared response envelope. Handlers that already wrote
// a response are left alone.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			log.Error(e.Err, "request error",
				"request_id", c.GetString(ContextRequestID),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
