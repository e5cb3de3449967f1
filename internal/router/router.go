package router

import (
	"net/http"
	"time"

	"github.com/fluentpath/ielts-backend/internal/config"
	"github.com/fluentpath/ielts-backend/internal/handler"
	"github.com/fluentpath/ielts-backend/internal/middleware"
	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/fluentpath/ielts-backend/internal/response"
	"github.com/fluentpath/ielts-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	LearnerPortal *handler.LearnerPortalHandler
	Grading       *handler.GradingHandler
	WS            *handler.WSHandler
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
		auth.POST("/learner/login", handlers.Auth.LearnerLogin)
		auth.POST("/grader/login", handlers.Auth.GraderLogin)

		// Authenticated profile routes
		auth.POST("/learner/logout", middleware.RequireLearnerJWT(authService), handlers.Auth.LearnerLogout)
		auth.GET("/learner/me", middleware.RequireLearnerJWT(authService), handlers.Auth.GetLearnerProfile)
		auth.GET("/grader/me", middleware.RequireGraderJWT(authService), handlers.Auth.GetGraderProfile)
	}

	// ─── 2. Learner Group (JWT + Single Device) ────────────────────────
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(
		middleware.RequireLearnerJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		learnerAPI.GET("/courses", handlers.LearnerPortal.ListCourses)
		learnerAPI.GET("/courses/:course_id/dashboard", handlers.LearnerPortal.GetDashboard)
		learnerAPI.POST("/courses/:course_id/lessons/:lesson_id/enter", handlers.LearnerPortal.EnterLesson)
		learnerAPI.POST("/courses/:course_id/lessons/:lesson_id/complete", handlers.LearnerPortal.CompleteLesson)
		learnerAPI.POST("/lessons/:lesson_id/submissions", handlers.LearnerPortal.SubmitExercise)
		learnerAPI.GET("/submissions", handlers.LearnerPortal.GetSubmissionHistory)
	}

	// ─── 3. WebSocket Group (Grader WS Auth) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireGraderWSAuth(authService))
	{
		ws.GET("/grading/feed", handlers.WS.GradingFeedStream)
	}

	// ─── 4. Grading Group (JWT + RBAC) ─────────────────────────────────
	gradingAPI := router.Group("/api/v1/grading")
	gradingAPI.Use(middleware.RequireGraderJWT(authService))
	{
		gradingAPI.GET("/submissions",
			middleware.RequirePermission(model.PermissionGradingRead),
			handlers.Grading.ListQueue,
		)
		gradingAPI.GET("/submissions/:id",
			middleware.RequirePermission(model.PermissionGradingRead),
			handlers.Grading.GetSubmission,
		)
		gradingAPI.POST("/score-preview",
			middleware.RequirePermission(model.PermissionGradingRead),
			handlers.Grading.ScorePreview,
		)
		gradingAPI.POST("/submissions/:id/open",
			middleware.RequirePermission(model.PermissionGradingWrite),
			handlers.Grading.OpenSubmission,
		)
		gradingAPI.PUT("/submissions/:id/grade",
			middleware.RequirePermission(model.PermissionGradingWrite),
			handlers.Grading.SaveGrade,
		)
		gradingAPI.POST("/submissions/:id/return",
			middleware.RequirePermission(model.PermissionGradingWrite),
			handlers.Grading.ReturnSubmission,
		)
	}

	return router
}
