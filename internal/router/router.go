package router

import (
	"time"

	"scholarly/config"
	"scholarly/internal/handler"
	"scholarly/internal/middleware"
	"scholarly/internal/repository"
	"scholarly/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	concernRepo := repository.NewConcernRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, log)
	concernSvc := service.NewConcernService(concernRepo, notifSvc, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	concernHandler := handler.NewConcernHandler(concernSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, notifSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		concerns := api.Group("/concerns")
		concerns.Use(authMw)
		{
			concerns.GET("", concernHandler.List)
			concerns.POST("", concernHandler.Create)
			concerns.PATCH("/:id/read", concernHandler.MarkRead)
			concerns.PUT("/:id", adminMw, concernHandler.Update)
		}

		api.GET("/admin/concerns", authMw, adminMw, concernHandler.AdminList)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/notifications", notificationHandler.List)
			me.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.POST("/notifications", authMw, adminMw, notificationHandler.Create)
	}

	return r
}
