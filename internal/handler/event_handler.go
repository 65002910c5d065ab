package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlive/quizlive-backend/internal/response"
	"github.com/quizlive/quizlive-backend/internal/service"
	"github.com/quizlive/quizlive-backend/internal/validator"
)

// EventHandler handles the admin side of the event lifecycle: creation,
// configuration and live progression. Every mutation lands in the audit
// trail.
type EventHandler struct {
	eventService *service.EventService
	adminService *service.AdminService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService *service.EventService, adminService *service.AdminService) *EventHandler {
	return &EventHandler{eventService: eventService, adminService: adminService}
}

func (h *EventHandler) audit(c *gin.Context, action, eventID string) {
	h.adminService.Audit(c.Request.Context(), action, &eventID, nil)
}

type createEventRequest struct {
	Title        string   `json:"title" binding:"required"`
	JoinCode     string   `json:"join_code"`
	TimeLimitSec int      `json:"time_limit_sec" binding:"required,min=5,max=600"`
	QuestionIDs  []string `json:"question_ids"`
}

// CreateEvent godoc
// POST /api/v1/admin/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	brief, err := h.eventService.CreateEvent(c.Request.Context(), req.Title, req.JoinCode, req.TimeLimitSec, req.QuestionIDs)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.create", brief.EventID)
	response.Success(c, http.StatusCreated, brief)
}

// ListEvents godoc
// GET /api/v1/admin/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.eventService.ListEvents(c.Request.Context())
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

type joinCodeRequest struct {
	JoinCode string `json:"join_code" binding:"required,min=4,max=32"`
}

// UpdateJoinCode godoc
// PUT /api/v1/admin/events/:event_id/join-code
func (h *EventHandler) UpdateJoinCode(c *gin.Context) {
	var req joinCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	eventID := c.Param("event_id")
	brief, err := h.eventService.UpdateJoinCode(c.Request.Context(), eventID, req.JoinCode)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.join_code", eventID)
	response.Success(c, http.StatusOK, brief)
}

type setQuestionsRequest struct {
	QuestionIDs []string `json:"question_ids" binding:"required,min=1"`
}

// SetQuestions godoc
// PUT /api/v1/admin/events/:event_id/questions
func (h *EventHandler) SetQuestions(c *gin.Context) {
	var req setQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	eventID := c.Param("event_id")
	if err := h.eventService.SetEventQuestions(c.Request.Context(), eventID, req.QuestionIDs); err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.questions", eventID)
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Start godoc
// POST /api/v1/admin/events/:event_id/start
func (h *EventHandler) Start(c *gin.Context) {
	eventID := c.Param("event_id")
	res, err := h.eventService.Start(c.Request.Context(), eventID)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.start", eventID)
	response.Success(c, http.StatusOK, res)
}

// NextQuestion godoc
// POST /api/v1/admin/events/:event_id/next
func (h *EventHandler) NextQuestion(c *gin.Context) {
	eventID := c.Param("event_id")
	res, err := h.eventService.NextQuestion(c.Request.Context(), eventID)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.next", eventID)
	response.Success(c, http.StatusOK, res)
}

// CloseQuestion godoc
// POST /api/v1/admin/events/:event_id/questions/:question_id/close
func (h *EventHandler) CloseQuestion(c *gin.Context) {
	eventID := c.Param("event_id")
	res, err := h.eventService.CloseQuestion(c.Request.Context(), eventID, c.Param("question_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "question.close", eventID)
	response.Success(c, http.StatusOK, res)
}

// RevealAnswer godoc
// POST /api/v1/admin/events/:event_id/questions/:question_id/reveal
func (h *EventHandler) RevealAnswer(c *gin.Context) {
	eventID := c.Param("event_id")
	res, err := h.eventService.RevealAnswer(c.Request.Context(), eventID, c.Param("question_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "question.reveal", eventID)
	response.Success(c, http.StatusOK, res)
}

// Finish godoc
// POST /api/v1/admin/events/:event_id/finish
func (h *EventHandler) Finish(c *gin.Context) {
	eventID := c.Param("event_id")
	res, err := h.eventService.Finish(c.Request.Context(), eventID)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.finish", eventID)
	response.Success(c, http.StatusOK, res)
}

// Abort godoc
// POST /api/v1/admin/events/:event_id/abort
func (h *EventHandler) Abort(c *gin.Context) {
	eventID := c.Param("event_id")
	res, err := h.eventService.Abort(c.Request.Context(), eventID)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.abort", eventID)
	response.Success(c, http.StatusOK, res)
}

// Reset godoc
// POST /api/v1/admin/events/:event_id/reset
// Purges participants and answers and returns the event to waiting.
func (h *EventHandler) Reset(c *gin.Context) {
	eventID := c.Param("event_id")
	res, err := h.eventService.Reset(c.Request.Context(), eventID)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.audit(c, "event.reset", eventID)
	response.Success(c, http.StatusOK, res)
}
