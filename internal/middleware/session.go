package middleware

import "github.com/gin-gonic/gin"

// SessionCookieName is the cookie carrying the participant session id.
// Participant auth is deliberately thin: the cookie is an opaque id that
// the services resolve themselves, so no middleware gate is needed — a
// missing session surfaces as UNAUTHENTICATED from the operation.
const SessionCookieName = "quiz_session"

// ParticipantSessionID reads the participant session cookie. Empty when
// the client has not joined.
func ParticipantSessionID(c *gin.Context) string {
	sid, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return sid
}
