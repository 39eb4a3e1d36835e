package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clearplot/internal/auth"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxLogger       = "logger"
	ctxUserID       = "userID"
)

// TokenVerifier checks a session token and returns the user it was issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// loggingMiddleware tags every request with an id and logs its outcome.
func loggingMiddleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		entry := log.WithField("request_id", reqID)
		c.Set(ctxLogger, entry)

		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
			"size":     c.Writer.Size(),
		}
		if uid := c.GetString(ctxUserID); uid != "" {
			fields["user_id"] = uid
		}
		entry.WithFields(fields).Info("request")
	}
}

func requestLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ctxLogger); ok {
		if entry, ok := v.(logrus.FieldLogger); ok {
			return entry
		}
	}
	return logrus.StandardLogger()
}

// requireAuth rejects requests without a valid bearer token.
func requireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.TokenFromRequest(c.Request)
		if err != nil {
			fail(c, err)
			return
		}
		userID, err := tokens.Verify(raw)
		if err != nil {
			fail(c, auth.ErrInvalidToken)
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// optionalAuth records the caller when a valid bearer token is present and
// lets every request through.
func optionalAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := auth.TokenFromRequest(c.Request); err == nil {
			if userID, err := tokens.Verify(raw); err == nil {
				c.Set(ctxUserID, userID)
			}
		}
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
