package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlive/quizlive-backend/internal/response"
	"github.com/quizlive/quizlive-backend/internal/service"
)

const (
	// AdminCookieName is the cookie carrying the admin session JWT.
	AdminCookieName = "admin_session"
	// ContextKeyAdminID is the Gin context key for the verified admin id.
	ContextKeyAdminID = "admin_id"
)

// RequireAdmin validates the admin session cookie. The token signature and
// its registered session id must both check out.
func RequireAdmin(adminService *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AdminCookieName)
		if err != nil || token == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAdminAuthRequired)
			return
		}

		adminID, err := adminService.Verify(c.Request.Context(), token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAdminAuthRequired)
			return
		}

		c.Set(ContextKeyAdminID, adminID)
		c.Next()
	}
}

// GetAdminID retrieves the verified admin id from the Gin context.
func GetAdminID(c *gin.Context) string {
	val, exists := c.Get(ContextKeyAdminID)
	if !exists {
		return ""
	}
	id, _ := val.(string)
	return id
}
