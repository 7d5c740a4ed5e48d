package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceHeader = "X-Trace-ID"
	ActorHeader = "X-User-ID"

	traceKey = "trace_id"
	actorKey = "actor"
)

// Trace assigns every request a trace id, reusing a well-formed inbound one.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		c.Set(traceKey, traceID)
		c.Writer.Header().Set(TraceHeader, traceID)
		c.Next()
	}
}

func TraceID(c *gin.Context) string {
	return c.GetString(traceKey)
}

// Actor records the acting user set by the identity edge. Routes that need one
// reject an empty actor in the service layer.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(actorKey, c.GetHeader(ActorHeader))
		c.Next()
	}
}

func ActorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
