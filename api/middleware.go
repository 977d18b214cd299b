package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDKey = "request_id"
	principalKey = "principal"
	loginPath    = "/login/"
)

// RequestID assigns every request an ID and a logrus entry carrying it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)

		entry := logrus.WithField(requestIDKey, rid)
		c.Request = c.Request.WithContext(logging.ToContext(c.Request.Context(), entry))
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"ip":         c.ClientIP(),
		})
		if principal := principalFrom(c); principal.Authenticated() {
			entry = entry.WithField("user_id", principal.UserID)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		default:
			entry.Info("request handled")
		}
	}
}

// RequireAuth redirects anonymous callers to the login page, remembering
// the requested path and query in the next parameter.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principalFrom(c).Authenticated() {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, loginRedirect(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

func loginRedirect(next string) string {
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

func principalFrom(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}
