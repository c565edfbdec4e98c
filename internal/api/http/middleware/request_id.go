package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/logging"
)

const (
	RequestIDHeader = "X-Request-Id"
	maxRequestIDLen = 64
)

// RequestIDMiddleware tags each request with an id (client supplied or
// generated), echoes it in X-Request-Id and writes one access line when
// the request completes. The actor is included once the bearer middleware
// has resolved it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		user := c.GetString("user_id")
		if user == "" {
			user = "-"
		}
		log.Printf("[req] id=%s method=%s path=%s status=%d latency=%s user_id=%s client=%s",
			rid, c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start), user, c.ClientIP())
	}
}
