package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/handler"
	"github.com/clinsa/psicotest-backend/internal/middleware"
	"github.com/clinsa/psicotest-backend/internal/response"
	"github.com/clinsa/psicotest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Portal     *handler.PortalHandler
	Assessment *handler.AssessmentHandler
	Template   *handler.TemplateHandler
	Patient    *handler.PatientHandler
	Guardian   *handler.GuardianHandler
	// Alert and PatientAlert are the same handler type bound to the
	// clinician and the patient inbox respectively.
	Alert        *handler.AlertHandler
	PatientAlert *handler.AlertHandler
	Catalog      *handler.CatalogHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/patient/login", handlers.Auth.PatientLogin)
		auth.POST("/psychologist/login", handlers.Auth.PsychologistLogin)
	}

	// ─── 2. Patient Group (JWT + Single Device) ────────────────────────
	patientAPI := router.Group("/api/v1/patient")
	patientAPI.Use(middleware.RequirePatientJWT(authService))
	{
		patientAPI.GET("/assessments", handlers.Portal.ListAssessments)
		patientAPI.GET("/assessments/:assessment_id", handlers.Portal.GetPaper)
		patientAPI.POST("/assessments/:assessment_id/answers", handlers.Portal.SubmitAnswers)
		patientAPI.GET("/assessments/:assessment_id/progress", handlers.Portal.GetProgress)

		// Evaluation notifications land in the patient inbox.
		patientAPI.GET("/alerts", handlers.PatientAlert.List)
		patientAPI.POST("/alerts/read-all", handlers.PatientAlert.MarkAllRead)
		patientAPI.POST("/alerts/:alert_id/read", handlers.PatientAlert.MarkRead)
	}

	// ─── 3. WebSocket Group (Psychologist WS Auth) ─────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequirePsychologistWSAuth(authService))
	{
		ws.GET("/psych/stream", handlers.WS.AlertStream)
	}

	// ─── 4. Psychologist Group (JWT) ───────────────────────────────────
	psychAPI := router.Group("/api/v1/psych")
	psychAPI.Use(middleware.RequirePsychologistJWT(authService))
	{
		psychAPI.GET("/me", handlers.Auth.PsychologistMe)

		// Catalogs. The question type set is closed, so clients may cache it.
		psychAPI.GET("/catalog/question-types", middleware.CacheControl(3600), handlers.Catalog.QuestionTypes)

		// Template management
		psychAPI.GET("/templates", handlers.Template.List)
		psychAPI.POST("/templates", handlers.Template.Create)
		psychAPI.GET("/templates/:template_id", handlers.Template.Get)
		psychAPI.PUT("/templates/:template_id", handlers.Template.Update)
		psychAPI.DELETE("/templates/:template_id", handlers.Template.Delete)
		psychAPI.POST("/templates/:template_id/publish", handlers.Template.Publish)
		psychAPI.POST("/templates/:template_id/archive", handlers.Template.Archive)
		psychAPI.GET("/templates/:template_id/preview", handlers.Template.Preview)
		psychAPI.POST("/templates/:template_id/questions", handlers.Template.AddQuestion)
		psychAPI.PUT("/templates/:template_id/questions", handlers.Template.ReplaceQuestions)
		psychAPI.GET("/templates/:template_id/interpretations", handlers.Template.ListInterpretations)
		psychAPI.PUT("/templates/:template_id/interpretations", handlers.Template.ReplaceInterpretations)

		// Assessment workflow
		psychAPI.GET("/assessments", handlers.Assessment.List)
		psychAPI.POST("/assessments", handlers.Assessment.Assign)
		psychAPI.GET("/assessments/:assessment_id", handlers.Assessment.GetPaper)
		psychAPI.POST("/assessments/:assessment_id/evaluate", handlers.Assessment.Evaluate)
		psychAPI.GET("/assessments/:assessment_id/report", handlers.Assessment.DomainReport)

		// Patient management
		psychAPI.GET("/patients", handlers.Patient.List)
		psychAPI.POST("/patients", handlers.Patient.Create)
		psychAPI.GET("/patients/:patient_id", handlers.Patient.Get)
		psychAPI.PUT("/patients/:patient_id", handlers.Patient.Update)
		psychAPI.DELETE("/patients/:patient_id", handlers.Patient.Delete)
		psychAPI.POST("/patients/:patient_id/reset-session", handlers.Patient.ResetSession)

		// Guardian records
		psychAPI.GET("/guardians", handlers.Guardian.List)
		psychAPI.POST("/guardians", handlers.Guardian.Create)
		psychAPI.GET("/guardians/:guardian_id", handlers.Guardian.Get)
		psychAPI.PUT("/guardians/:guardian_id", handlers.Guardian.Update)
		psychAPI.DELETE("/guardians/:guardian_id", handlers.Guardian.Delete)

		// Notification inbox
		psychAPI.GET("/alerts", handlers.Alert.List)
		psychAPI.POST("/alerts/read-all", handlers.Alert.MarkAllRead)
		psychAPI.POST("/alerts/:alert_id/read", handlers.Alert.MarkRead)
	}

	return router
}
