package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"eticket/internal/booking"
	"eticket/internal/domain"
	"eticket/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "booking_session"

// SessionTokenHeader carries a freshly signed token on every authenticated
// response; clients replace their token with it.
const SessionTokenHeader = "X-Session-Token"

// RequireSession resolves the bearer session token to a live booking session.
// An expired token is still honoured while its session holds a payment that
// has not been verified.
func RequireSession(tokens session.Tokens, store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			abortUnauthorized(c, "missing session token")
			return
		}
		sid, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
		expired := errors.Is(err, session.ErrTokenExpired)
		if err != nil && !expired {
			abortUnauthorized(c, "invalid session token")
			return
		}
		sess, err := store.Get(sid)
		if err != nil {
			status := http.StatusInternalServerError
			if domain.IsNotFound(err) {
				status = http.StatusGone
			}
			c.AbortWithStatusJSON(status, gin.H{
				"error":      "session expired, start a new booking",
				"code":       "session_expired",
				"request_id": GetRequestID(c),
			})
			return
		}
		if expired && sess.Snapshot().Payment == nil {
			abortUnauthorized(c, "session token expired")
			return
		}
		if fresh, err := tokens.Sign(sid, time.Now()); err == nil {
			c.Header(SessionTokenHeader, fresh)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession returns the session set by RequireSession.
func GetSession(c *gin.Context) *booking.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*booking.Session); ok {
			return s
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
