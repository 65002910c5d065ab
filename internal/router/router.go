package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizlive/quizlive-backend/internal/config"
	"github.com/quizlive/quizlive-backend/internal/handler"
	"github.com/quizlive/quizlive-backend/internal/middleware"
	"github.com/quizlive/quizlive-backend/internal/response"
	"github.com/quizlive/quizlive-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Admin       *handler.AdminHandler
	Event       *handler.EventHandler
	Question    *handler.QuestionHandler
	Participant *handler.ParticipantHandler
	WS          *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(adminService *service.AdminService, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// Restrict to the configured origins; fall back to allow-all so dev
	// works without extra config. Credentials are required for cookies.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the admin login (10 attempts per minute per IP).
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Admin Auth (Public, Rate Limited) ──────────────────────────
	adminAuth := router.Group("/api/v1/admin")
	{
		adminAuth.POST("/login", loginLimiter.Middleware(), handlers.Admin.Login)
		adminAuth.POST("/logout", handlers.Admin.Logout)
	}

	// ─── 2. Admin Group (Session Cookie) ───────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdmin(adminService))
	{
		adminAPI.GET("/me", handlers.Admin.Me)
		adminAPI.GET("/audit-logs", handlers.Admin.ListAuditLogs)

		// Question catalog
		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.PUT("/questions/order", handlers.Question.Reorder)
		adminAPI.GET("/questions/:question_id", handlers.Question.Get)
		adminAPI.PUT("/questions/:question_id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:question_id", handlers.Question.Delete)
		adminAPI.PUT("/questions/:question_id/enabled", handlers.Question.SetEnabled)

		// Event lifecycle
		adminAPI.GET("/events", handlers.Event.ListEvents)
		adminAPI.POST("/events", handlers.Event.CreateEvent)
		adminAPI.PUT("/events/:event_id/join-code", handlers.Event.UpdateJoinCode)
		adminAPI.PUT("/events/:event_id/questions", handlers.Event.SetQuestions)
		adminAPI.POST("/events/:event_id/start", handlers.Event.Start)
		adminAPI.POST("/events/:event_id/next", handlers.Event.NextQuestion)
		adminAPI.POST("/events/:event_id/questions/:question_id/close", handlers.Event.CloseQuestion)
		adminAPI.POST("/events/:event_id/questions/:question_id/reveal", handlers.Event.RevealAnswer)
		adminAPI.POST("/events/:event_id/finish", handlers.Event.Finish)
		adminAPI.POST("/events/:event_id/abort", handlers.Event.Abort)
		adminAPI.POST("/events/:event_id/reset", handlers.Event.Reset)
	}

	// ─── 3. Participant Group (Session Cookie) ─────────────────────────
	eventAPI := router.Group("/api/v1/events")
	{
		eventAPI.POST("/:event_id/join", handlers.Participant.Join)
		eventAPI.POST("/:event_id/register", handlers.Participant.Register)
		eventAPI.POST("/:event_id/logout", handlers.Participant.Logout)
		eventAPI.GET("/:event_id/state", handlers.Participant.State)
		eventAPI.GET("/:event_id/current-question", handlers.Participant.CurrentQuestion)
		eventAPI.POST("/:event_id/answers", handlers.Participant.Submit)
		eventAPI.GET("/:event_id/questions/:question_id/my-answer", handlers.Participant.MyAnswer)
		eventAPI.GET("/:event_id/results", handlers.Participant.Results)
		eventAPI.GET("/:event_id/results.csv", handlers.Participant.ResultsCSV)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	wsAPI := router.Group("/ws/v1")
	{
		wsAPI.GET("/events/:event_id/stream", handlers.WS.EventStream)
	}

	return router
}
