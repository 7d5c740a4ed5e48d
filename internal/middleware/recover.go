package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"donation-settle-api/internal/constant"
	"donation-settle-api/internal/utils"
)

// Recover turns a panic into a 500 envelope and logs the stack.
func Recover(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"trace_id": TraceID(c),
					"path":     c.Request.URL.Path,
					"panic":    r,
					"stack":    string(debug.Stack()),
				}).Error("request panicked")
				c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorWithTrace(constant.CodeSystemError, TraceID(c)))
			}
		}()
		c.Next()
	}
}
