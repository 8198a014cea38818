package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clinic-api/internal/auth"
)

const (
	claimsKey       = "auth.claims"
	requestIDHeader = "X-Request-ID"
)

// TokenVerifier validates bearer tokens presented by clients.
type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}

// requireAuth rejects requests without a valid bearer token and stores the
// decoded claims for downstream handlers.
func requireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusForbidden, "Forbidden")
			return
		}

		var candidate string
		if fields := strings.Fields(header); len(fields) > 1 {
			candidate = fields[1]
		}

		claims, err := tokens.Parse(candidate)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireAnonymous rejects any request that carries an Authorization header,
// valid or not.
func requireAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			abort(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Next()
	}
}

func claimsFromContext(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		if claims := claimsFromContext(c); claims != nil {
			entry = entry.WithField("user_id", claims.ID)
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
