package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlive/quizlive-backend/internal/middleware"
	"github.com/quizlive/quizlive-backend/internal/response"
	"github.com/quizlive/quizlive-backend/internal/service"
	"github.com/quizlive/quizlive-backend/internal/validator"
)

// sessionCookieMaxAge keeps the participant cookie alive well past any
// single quiz evening.
const sessionCookieMaxAge = 24 * 60 * 60

// ParticipantHandler handles the audience-facing endpoints: joining,
// registering, answering and reading results.
type ParticipantHandler struct {
	participantService *service.ParticipantService
	eventService       *service.EventService
	answerService      *service.AnswerService
	rankingService     *service.RankingService
}

// NewParticipantHandler creates a new ParticipantHandler.
func NewParticipantHandler(
	participantService *service.ParticipantService,
	eventService *service.EventService,
	answerService *service.AnswerService,
	rankingService *service.RankingService,
) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		eventService:       eventService,
		answerService:      answerService,
		rankingService:     rankingService,
	}
}

type joinRequest struct {
	JoinCode string `json:"join_code" binding:"required"`
}

// Join godoc
// POST /api/v1/events/:event_id/join
// Validates the join code and sets the participant session cookie.
func (h *ParticipantHandler) Join(c *gin.Context) {
	var req joinRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	sess, err := h.participantService.Join(c.Request.Context(), c.Param("event_id"), req.JoinCode)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, sess.ID, sessionCookieMaxAge, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"session_id": sess.ID})
}

type registerRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=1,max=32"`
}

// Register godoc
// POST /api/v1/events/:event_id/register
// Attaches a display name to the session.
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req registerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	user, err := h.participantService.Register(c.Request.Context(),
		c.Param("event_id"), middleware.ParticipantSessionID(c), req.DisplayName)
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Logout godoc
// POST /api/v1/events/:event_id/logout
// Discards the session and clears the cookie.
func (h *ParticipantHandler) Logout(c *gin.Context) {
	if sid := middleware.ParticipantSessionID(c); sid != "" {
		if err := h.participantService.Logout(c.Request.Context(), sid); err != nil {
			failDomain(c, err)
			return
		}
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// State godoc
// GET /api/v1/events/:event_id/state
// Returns the composite "what should my screen show" view.
func (h *ParticipantHandler) State(c *gin.Context) {
	state, err := h.eventService.GetUserState(c.Request.Context(),
		c.Param("event_id"), middleware.ParticipantSessionID(c))
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// CurrentQuestion godoc
// GET /api/v1/events/:event_id/current-question
// Polling fallback for clients without a live push channel.
func (h *ParticipantHandler) CurrentQuestion(c *gin.Context) {
	view, err := h.eventService.GetCurrentQuestion(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

type submitRequest struct {
	QuestionID  string `json:"question_id" binding:"required"`
	ChoiceIndex *int   `json:"choice_index" binding:"required,min=0,max=3"`
}

// Submit godoc
// POST /api/v1/events/:event_id/answers
// Records one answer attempt and returns the verdict.
func (h *ParticipantHandler) Submit(c *gin.Context) {
	var req submitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	res, err := h.answerService.Submit(c.Request.Context(),
		c.Param("event_id"), middleware.ParticipantSessionID(c), req.QuestionID, *req.ChoiceIndex)
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// MyAnswer godoc
// GET /api/v1/events/:event_id/questions/:question_id/my-answer
func (h *ParticipantHandler) MyAnswer(c *gin.Context) {
	info, err := h.answerService.GetMyAnswer(c.Request.Context(),
		c.Param("event_id"), middleware.ParticipantSessionID(c), c.Param("question_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

// Results godoc
// GET /api/v1/events/:event_id/results
// Standings are public once computed; the screen projecting them carries
// no session.
func (h *ParticipantHandler) Results(c *gin.Context) {
	res, err := h.rankingService.Calculate(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// ResultsCSV godoc
// GET /api/v1/events/:event_id/results.csv
// Streams the standings as a BOM-prefixed UTF-8 CSV download.
func (h *ParticipantHandler) ResultsCSV(c *gin.Context) {
	raw, err := h.rankingService.ExportCSV(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		failDomain(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="results.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", raw)
}
