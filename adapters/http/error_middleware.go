package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkduy/cinevault/pkg/apperror"
	"github.com/nkduy/cinevault/pkg/logger"
)

// ErrorMiddleware is the terminal handler of the request pipeline. Every
// stage and handler records failures with c.Error; this middleware
// serializes the last one after the chain unwinds. Unclassified failures
// are logged with their cause and reach the client as a bare message.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		appErr := apperror.From(last.Err)
		if appErr.Kind == apperror.KindInternal {
			log.Error("request failed", last.Err,
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path))
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.Status, errorPayload(appErr))
	}
}

// errorPayload maps each error kind to its wire shape explicitly. No
// reflection over error fields: what is not listed here never leaves the
// process.
func errorPayload(e *apperror.Error) gin.H {
	switch e.Kind {
	case apperror.KindEntity:
		return gin.H{
			"message": e.Message,
			"errors":  e.Fields,
		}
	case apperror.KindValidation:
		return gin.H{
			"message":   e.Message,
			"location":  e.Location,
			"errorInfo": e.Fields,
		}
	case apperror.KindAuth:
		payload := gin.H{
			"message":  e.Message,
			"location": e.Location,
		}
		if e.Info != nil {
			payload["errorInfo"] = e.Info
		}
		return payload
	case apperror.KindNotFound:
		return gin.H{"message": e.Message}
	default:
		return gin.H{"message": e.Message}
	}
}
