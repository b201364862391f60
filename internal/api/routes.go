package api

import (
	"net/http"

	"cvos/coach-app/internal/access"
	"cvos/coach-app/internal/assist"
	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/methodology"
	"cvos/coach-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Auth        service.AuthService
	Profiles    service.ProfileService
	Onboarding  service.OnboardingService
	Clients     service.ClientService
	Exercises   service.ExerciseService
	Programs    service.ProgramService
	Assistant   assist.Assistant
	Catalog     *methodology.Catalog
	Roles       *access.RoleResolver
	JWTSecret   string
	RequestLogs bool
}

func SetupRoutes(router *gin.Engine, svc Services, log *zap.Logger) {
	authHandler := NewAuthHandler(svc.Auth, log)
	profileHandler := NewProfileHandler(svc.Profiles, svc.Auth, log)
	onboardingHandler := NewOnboardingHandler(svc.Onboarding, log)
	if svc.Assistant == nil {
		svc.Assistant = assist.Disabled{}
	}
	exerciseHandler := NewExerciseHandler(svc.Exercises, svc.Assistant, log)
	methodologyHandler := NewMethodologyHandler(svc.Catalog)
	clientHandler := NewClientHandler(svc.Clients, log)
	programHandler := NewProgramHandler(svc.Programs, log)
	athleteHandler := NewAthleteHandler(svc.Clients, svc.Programs, log)

	if svc.RequestLogs {
		router.Use(RequestLogger(log))
	}

	authMiddleware := AuthMiddleware(svc.JWTSecret, svc.Roles)
	staff := RoleMiddleware(domain.RoleCoach)
	athlete := RoleMiddleware(domain.RoleAthlete)
	adminOnly := RoleMiddleware()

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
		}

		// Answers for anonymous callers too, so the front end can gate every page.
		apiV1.GET("/access", OptionalAuthMiddleware(svc.JWTSecret, svc.Roles), profileHandler.CheckAccess)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", profileHandler.GetMe)
		protected.PATCH("/me", profileHandler.UpdateMe)
		protected.POST("/me/avatar-upload-url", onboardingHandler.AvatarUploadURL)

		// --- Onboarding (no role required) ---
		onboardingGroup := protected.Group("/onboarding")
		{
			onboardingGroup.GET("", onboardingHandler.GetState)
			onboardingGroup.POST("/role", onboardingHandler.SelectRole)
			onboardingGroup.POST("/steps/:step", onboardingHandler.SubmitStep)
			onboardingGroup.POST("/back", onboardingHandler.Back)
			onboardingGroup.POST("/avatar-upload-url", onboardingHandler.AvatarUploadURL)
		}

		// --- Library ---
		protected.GET("/methodologies", staff, methodologyHandler.ListMethodologies)
		protected.GET("/methodologies/:code", staff, methodologyHandler.GetMethodology)

		exerciseGroup := protected.Group("/exercises", staff)
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/resolve", exerciseHandler.ResolveExercise)
			exerciseGroup.POST("/suggest-details", exerciseHandler.SuggestDetails)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
		}

		// --- Coach & admin ---
		protected.GET("/coaches", staff, profileHandler.ListCoaches)

		clientGroup := protected.Group("/clients", staff)
		{
			clientGroup.GET("", clientHandler.ListClients)
			clientGroup.POST("", clientHandler.CreateClient)
			clientGroup.GET("/:id", clientHandler.GetClient)
			clientGroup.PUT("/:id", clientHandler.UpdateClient)
			clientGroup.DELETE("/:id", clientHandler.DeleteClient)
			clientGroup.PUT("/:id/coach", clientHandler.AssignCoach)
			clientGroup.PUT("/:id/benchmarks", clientHandler.UpdateBenchmarks)
		}

		programGroup := protected.Group("/programs", staff)
		{
			programGroup.GET("", programHandler.ListPrograms)
			programGroup.POST("", programHandler.CreateProgram)
			programGroup.POST("/calendar-preview", programHandler.CalendarPreview)
			programGroup.GET("/:id", programHandler.GetProgram)
			programGroup.DELETE("/:id", programHandler.DeleteProgram)
			programGroup.PUT("/:id/mesocycles", programHandler.SaveMesocycles)
			programGroup.PATCH("/:id/status", programHandler.UpdateStatus)
			programGroup.PUT("/:id/client", programHandler.AssignClient)
			programGroup.POST("/:id/duplicate", programHandler.DuplicateTemplate)
			programGroup.GET("/:id/validation", programHandler.ValidateProgram)
			programGroup.GET("/:id/export", programHandler.ExportProgram)
		}

		protected.GET("/dashboard/stats", staff, programHandler.DashboardStats)

		// --- Athlete self-service ---
		athleteGroup := protected.Group("/athlete", athlete)
		{
			athleteGroup.GET("/client", athleteHandler.GetMyClient)
			athleteGroup.GET("/coach", athleteHandler.GetMyCoach)
			athleteGroup.GET("/gym", athleteHandler.GetMyGym)
			athleteGroup.GET("/programs", athleteHandler.GetMyPrograms)
			athleteGroup.GET("/programs/:id", athleteHandler.GetMyProgram)
			athleteGroup.GET("/programs/:id/export", athleteHandler.ExportMyProgram)
		}

		// --- Admin ---
		adminGroup := protected.Group("/admin", adminOnly)
		{
			adminGroup.GET("/profiles", profileHandler.ListProfiles)
			adminGroup.PATCH("/profiles/:id/role", profileHandler.UpdateRole)
			adminGroup.POST("/profiles/:id/password-reset", profileHandler.SendPasswordReset)
		}
	}
}
