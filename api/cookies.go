package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"
	flashMaxAge = 60

	levelSuccess = "success"
	levelError   = "error"
)

type cookieJar struct {
	name     string
	secure   bool
	sessions *auth.SessionManager
}

// authenticate resolves the session cookie into a principal. An invalid
// or expired token is cleared and the request continues anonymously.
func (j cookieJar) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(j.name)
		if err != nil || token == "" || j.sessions == nil {
			c.Next()
			return
		}
		principal, err := j.sessions.Parse(token)
		if err != nil {
			logging.FromContext(c.Request.Context()).WithError(err).Debug("dropping session cookie")
			j.clearSession(c)
			c.Next()
			return
		}
		c.Set(principalKey, principal)
		c.Request = c.Request.WithContext(logging.ToContext(c.Request.Context(),
			logging.FromContext(c.Request.Context()).WithField("user_id", principal.UserID)))
		c.Next()
	}
}

func (j cookieJar) startSession(c *gin.Context, user domain.User) error {
	token, err := j.sessions.Issue(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(j.name, token, int(j.sessions.TTL().Seconds()), "/", "", j.secure, true)
	return nil
}

func (j cookieJar) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(j.name, "", -1, "/", "", j.secure, true)
}

type message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// setFlash attaches a one-shot notice to the next rendered view.
func setFlash(c *gin.Context, level, text string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, level+"|"+text, flashMaxAge, "/", "", false, true)
}

// takeFlash returns the pending notices and clears the cookie.
func takeFlash(c *gin.Context) []message {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	level, text, ok := strings.Cut(raw, "|")
	if !ok || text == "" {
		return nil
	}
	return []message{{Level: level, Text: text}}
}
