package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestID is the gin context key carrying the per-request ID.
const ContextRequestID = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with an ID for log correlation. A
// caller-supplied X-Request-ID is kept so an upstream proxy can stitch its
// traces to ours; otherwise a fresh UUID is minted.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Logger writes one line per request with the correlating ID, outcome, and
// latency. Probe endpoints are skipped so frequent health checks do not
// drown out invoice traffic in the log.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/healthz" || path == "/readyz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		log.Printf("middleware.Logger: [%s] %s %s -> %d in %s from %s",
			c.GetString(ContextRequestID),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}

// Recovery converts a handler panic into the standard error envelope instead
// of a dropped connection, logging the panic value with its request ID.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("middleware.Recovery: [%s] panic on %s %s: %v",
			c.GetString(ContextRequestID),
			c.Request.Method,
			c.Request.URL.Path,
			recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
