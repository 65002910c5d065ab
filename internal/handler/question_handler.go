package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlive/quizlive-backend/internal/response"
	"github.com/quizlive/quizlive-backend/internal/service"
	"github.com/quizlive/quizlive-backend/internal/validator"
)

// QuestionHandler handles admin question catalog management.
type QuestionHandler struct {
	questionService *service.QuestionService
	adminService    *service.AdminService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, adminService *service.AdminService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, adminService: adminService}
}

// List godoc
// GET /api/v1/admin/questions?enabled=true
func (h *QuestionHandler) List(c *gin.Context) {
	enabledOnly := c.Query("enabled") == "true"
	questions, err := h.questionService.List(c.Request.Context(), enabledOnly)
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Get godoc
// GET /api/v1/admin/questions/:question_id
func (h *QuestionHandler) Get(c *gin.Context) {
	q, err := h.questionService.Get(c.Request.Context(), c.Param("question_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// Create godoc
// POST /api/v1/admin/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var in service.QuestionInput
	if fields := validator.Bind(c, &in); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), &in)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.adminService.Audit(c.Request.Context(), "question.create", nil, map[string]interface{}{"question_id": q.ID})
	response.Success(c, http.StatusCreated, q)
}

// Update godoc
// PUT /api/v1/admin/questions/:question_id
func (h *QuestionHandler) Update(c *gin.Context) {
	var in service.QuestionInput
	if fields := validator.Bind(c, &in); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), c.Param("question_id"), &in)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.adminService.Audit(c.Request.Context(), "question.update", nil, map[string]interface{}{"question_id": q.ID})
	response.Success(c, http.StatusOK, q)
}

// Delete godoc
// DELETE /api/v1/admin/questions/:question_id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id := c.Param("question_id")
	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		failDomain(c, err)
		return
	}
	h.adminService.Audit(c.Request.Context(), "question.delete", nil, map[string]interface{}{"question_id": id})
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

type reorderRequest struct {
	QuestionIDs []string `json:"question_ids" binding:"required,min=1"`
}

// Reorder godoc
// PUT /api/v1/admin/questions/order
func (h *QuestionHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	if err := h.questionService.Reorder(c.Request.Context(), req.QuestionIDs); err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

type enableRequest struct {
	IsEnabled *bool `json:"is_enabled" binding:"required"`
}

// SetEnabled godoc
// PUT /api/v1/admin/questions/:question_id/enabled
func (h *QuestionHandler) SetEnabled(c *gin.Context) {
	var req enableRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	if err := h.questionService.SetEnabled(c.Request.Context(), c.Param("question_id"), *req.IsEnabled); err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
