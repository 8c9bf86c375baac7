package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gmail-analytics/pkg/util"
)

// SessionManager issues and reads the signed session token. The token carries only a session
// id; credentials stay server side.
type SessionManager struct {
	secret     string
	ttl        time.Duration
	cookieName string
	secure     bool
}

func NewSessionManager(secret string, ttl time.Duration, cookieName string, secure bool) *SessionManager {
	return &SessionManager{
		secret:     secret,
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}
}

// SessionID reads the session from the cookie, then from an Authorization bearer token.
// An invalid or expired token counts as no session.
func (m *SessionManager) SessionID(c *gin.Context) string {
	token, err := c.Cookie(m.cookieName)
	if err != nil || token == "" {
		token = util.ExtractToken(c.Request)
	}
	if token == "" {
		return ""
	}

	sid, err := util.ParseJWT(token, m.secret)
	if err != nil {
		return ""
	}
	return sid
}

// Issue signs a token for sessionID and sets it as an HttpOnly cookie.
func (m *SessionManager) Issue(c *gin.Context, sessionID string) (string, error) {
	token, err := util.GenerateJWT(sessionID, m.secret, m.ttl)
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return token, nil
}

func (m *SessionManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

func newSessionID() string {
	return uuid.NewString()
}
