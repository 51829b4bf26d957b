package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gig-backend/internal/config"
	"github.com/ignatzorin/gig-backend/internal/http/handlers"
	"github.com/ignatzorin/gig-backend/internal/http/middleware"
	"github.com/ignatzorin/gig-backend/internal/models"
	"github.com/ignatzorin/gig-backend/internal/service"
)

// SetupRouter собирает HTTP поверхность движка жизненного цикла.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	gigHandler *handlers.GigHandler,
	escrowHandler *handlers.EscrowHandler,
	ratingHandler *handlers.RatingHandler,
	disputeHandler *handlers.DisputeHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/evidence", http.Dir(cfg.EvidenceStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Публичные маршруты
	api.GET("/gigs", gigHandler.ListGigs)
	api.GET("/gigs/:id", middleware.UUIDValidator("id"), gigHandler.GetGig)
	api.GET("/gigs/:id/rating", middleware.UUIDValidator("id"), ratingHandler.GetForGig)
	api.GET("/workers/:id/ratings", middleware.UUIDValidator("id"), ratingHandler.ListForWorker)
	api.GET("/workers/:id/rating-summary", middleware.UUIDValidator("id"), ratingHandler.GetWorkerSummary)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты: команды жизненного цикла
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/gigs", gigHandler.PostGig)
		protected.GET("/gigs/mine", gigHandler.ListMyGigs)
		protected.GET("/applications/mine", gigHandler.ListMyApplications)

		gig := protected.Group("/gigs/:id")
		gig.Use(middleware.UUIDValidator("id"))
		{
			gig.POST("/applications", gigHandler.SubmitApplication)
			gig.GET("/applications", gigHandler.ListApplications)
			gig.POST("/accept", gigHandler.AcceptApplication)
			gig.POST("/complete", gigHandler.MarkComplete)
			gig.POST("/rating", gigHandler.SubmitRating)
			gig.POST("/dispute", gigHandler.RaiseDispute)
			gig.GET("/dispute", disputeHandler.GetForGig)
			gig.POST("/dispute/resolve", middleware.RequireRole(models.RoleArbiter), gigHandler.ResolveDispute)
			gig.GET("/escrow", escrowHandler.GetForGig)
		}

		protected.GET("/escrow", escrowHandler.ListMine)

		protected.GET("/disputes", disputeHandler.ListMine)
		dispute := protected.Group("/disputes/:id")
		dispute.Use(middleware.UUIDValidator("id"))
		{
			dispute.POST("/evidence", disputeHandler.UploadEvidence)
			dispute.GET("/evidence", disputeHandler.ListEvidence)
		}

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/read", notificationHandler.MarkRead)
	}

	return r
}
