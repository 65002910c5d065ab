package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/config"
	"github.com/quizlive/quizlive-backend/internal/database"
	"github.com/quizlive/quizlive-backend/internal/handler"
	"github.com/quizlive/quizlive-backend/internal/logger"
	"github.com/quizlive/quizlive-backend/internal/registry"
	"github.com/quizlive/quizlive-backend/internal/repository"
	"github.com/quizlive/quizlive-backend/internal/router"
	"github.com/quizlive/quizlive-backend/internal/service"
	"github.com/quizlive/quizlive-backend/internal/session"
	"github.com/quizlive/quizlive-backend/internal/validator"
	"github.com/quizlive/quizlive-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("broadcast", cfg.BroadcastMode).
		Msg("Starting QuizLive Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	// ─── Connection Registry ───────────────────────────────────────────
	// "redis" shares delivery timestamps and fans broadcasts out over
	// pub/sub so any instance can serve any participant. "local" keeps a
	// single-instance hub with in-memory delivery state.
	var broadcaster service.Broadcaster
	var conns handler.ConnectionRegistry
	var relay *registry.Relay
	if cfg.BroadcastMode == "local" {
		hub := registry.NewHub(registry.NewMemoryDeliveryStore(), log)
		broadcaster, conns = hub, hub
	} else {
		delivery := registry.NewRedisDeliveryStore(rdb, cfg.DeliveryTTL)
		hub := registry.NewHub(delivery, log)
		relay = registry.NewRelay(hub, delivery, rdb, log)
		relay.Start(ctx)
		broadcaster, conns = relay, relay
	}

	// ─── Initialize Services ───────────────────────────────────────────
	clock := service.SystemClock{}
	eventService := service.NewEventService(eventRepo, questionRepo, participantRepo, answerRepo, broadcaster, clock, log)
	answerService := service.NewAnswerService(eventRepo, questionRepo, participantRepo, answerRepo, broadcaster, clock, log)
	participantService := service.NewParticipantService(eventRepo, participantRepo, clock, log)
	rankingService := service.NewRankingService(eventRepo, participantRepo, answerRepo, log)
	questionService := service.NewQuestionService(questionRepo, clock, log)

	auditQueue := worker.NewRedisAuditQueue(rdb)
	adminService := service.NewAdminService(adminRepo, session.NewRedisStore(rdb), auditQueue,
		clock, cfg.JWTSecret, cfg.AdminSessionTTL, log)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Admin:       handler.NewAdminHandler(adminService, int(cfg.AdminSessionTTL.Seconds())),
		Event:       handler.NewEventHandler(eventService, adminService),
		Question:    handler.NewQuestionHandler(questionService, adminService),
		Participant: handler.NewParticipantHandler(participantService, eventService, answerService, rankingService),
		WS:          handler.NewWSHandler(conns, participantService, eventService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ──────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	go auditWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(adminService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the relay subscribe loop.
	if relay != nil {
		relay.Stop()
	}

	// 3. Stop background workers and wait for the audit queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
