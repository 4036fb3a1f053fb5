package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Cart-Session"
	SessionCookie = "cart_session"

	sessionKey    = "cart_session_id"
	sessionMaxAge = 30 * 24 * 60 * 60
)

// Session resolves the browsing session from the header or cookie and mints a
// new id when neither carries a valid uuid. The id is echoed back on both.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SessionHeader)
		if raw == "" {
			raw, _ = c.Cookie(SessionCookie)
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			id = uuid.New()
		}

		c.Set(sessionKey, id)
		c.Header(SessionHeader, id.String())
		c.SetCookie(SessionCookie, id.String(), sessionMaxAge, "/", "", false, true)
		c.Next()
	}
}

// SessionID returns the id stored by Session, or uuid.Nil outside of it.
func SessionID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(sessionKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
