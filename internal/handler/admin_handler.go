package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quizlive/quizlive-backend/internal/middleware"
	"github.com/quizlive/quizlive-backend/internal/response"
	"github.com/quizlive/quizlive-backend/internal/service"
	"github.com/quizlive/quizlive-backend/internal/validator"
)

// AdminHandler handles operator authentication and the audit trail.
type AdminHandler struct {
	adminService *service.AdminService
	cookieMaxAge int
}

// NewAdminHandler creates a new AdminHandler. cookieMaxAge is the admin
// session lifetime in seconds.
func NewAdminHandler(adminService *service.AdminService, cookieMaxAge int) *AdminHandler {
	return &AdminHandler{adminService: adminService, cookieMaxAge: cookieMaxAge}
}

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login godoc
// POST /api/v1/admin/login
// Verifies the operator password and sets the admin session cookie.
func (h *AdminHandler) Login(c *gin.Context) {
	var req adminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	token, err := h.adminService.Login(c.Request.Context(), req.Password)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, token, h.cookieMaxAge, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Logout godoc
// POST /api/v1/admin/logout
// Revokes the admin session and clears the cookie.
func (h *AdminHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.AdminCookieName)
	if err == nil && token != "" {
		if err := h.adminService.Logout(c.Request.Context(), token); err != nil {
			failDomain(c, err)
			return
		}
	}

	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Me godoc
// GET /api/v1/admin/me
// Returns the verified admin identity behind the session cookie.
func (h *AdminHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"admin_id": middleware.GetAdminID(c)})
}

// ListAuditLogs godoc
// GET /api/v1/admin/audit-logs
// Returns the newest audit entries.
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		limit = n
	}

	logs, err := h.adminService.ListAuditLogs(c.Request.Context(), limit)
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"audit_logs": logs})
}
