package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/database"
	"github.com/clinsa/psicotest-backend/internal/handler"
	"github.com/clinsa/psicotest-backend/internal/logger"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/notify"
	"github.com/clinsa/psicotest-backend/internal/repository"
	"github.com/clinsa/psicotest-backend/internal/router"
	"github.com/clinsa/psicotest-backend/internal/service"
	"github.com/clinsa/psicotest-backend/internal/validator"
	"github.com/clinsa/psicotest-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Psicotest Backend")

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
	patientRepo := repository.NewPatientRepository(pool)
	psychRepo := repository.NewPsychologistRepository(pool)
	guardianRepo := repository.NewGuardianRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	assessmentRepo := repository.NewAssessmentRepository(pool)
	interpRepo := repository.NewInterpretationRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	notifier := notify.NewQueueNotifier(rdb, log)
	authService := service.NewAuthService(cfg, rdb)
	patientService := service.NewPatientService(patientRepo, authService, log)
	psychService := service.NewPsychologistService(psychRepo, authService)
	guardianService := service.NewGuardianService(guardianRepo)
	templateService := service.NewTemplateService(templateRepo, interpRepo, rdb, log)
	interpService := service.NewInterpretationService(interpRepo, templateRepo, log)
	assessmentService := service.NewAssessmentService(assessmentRepo, templateRepo, interpRepo, patientRepo, notifier, rdb, cfg, log)
	evaluationService := service.NewEvaluationService(assessmentRepo, notifier, rdb, log)
	alertService := service.NewAlertService(alertRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(patientService, psychService),
		Portal:       handler.NewPortalHandler(assessmentService),
		Assessment:   handler.NewAssessmentHandler(assessmentService, evaluationService),
		Template:     handler.NewTemplateHandler(templateService, interpService),
		Patient:      handler.NewPatientHandler(patientService),
		Guardian:     handler.NewGuardianHandler(guardianService),
		Alert:        handler.NewAlertHandler(alertService, model.RecipientPsychologist),
		PatientAlert: handler.NewAlertHandler(alertService, model.RecipientPatient),
		Catalog:      handler.NewCatalogHandler(),
		WS:           handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	notificationWorker := worker.NewNotificationWorker(alertRepo, rdb, log)
	interpretationWorker := worker.NewInterpretationWorker(assessmentRepo, interpRepo, rdb, cfg, log)

	go notificationWorker.Start(workerCtx)
	go interpretationWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}
