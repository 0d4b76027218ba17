package app

import (
	"flashdeck_backend/docs"
	"flashdeck_backend/internal/config"
	"flashdeck_backend/internal/middleware"
	"flashdeck_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/auth/me", c.auth.GetMe)

		flashcards := authGroup.Group("/flashcards")
		{
			flashcards.POST("/sets", c.flashcard.CreateSet)
			flashcards.GET("/sets", c.flashcard.GetUserSets)
			flashcards.GET("/sets/:setId", c.flashcard.GetSetByID)
			flashcards.PUT("/sets/:setId", c.flashcard.UpdateSet)
			flashcards.DELETE("/sets/:setId", c.flashcard.DeleteSet)

			flashcards.POST("/sets/:setId/cards", c.flashcard.CreateCard)
			flashcards.PUT("/cards/:cardId", c.flashcard.UpdateCard)
			flashcards.DELETE("/cards/:cardId", c.flashcard.DeleteCard)

			flashcards.GET("/sets/:setId/study", c.flashcard.StudySession)
		}

		analytics := authGroup.Group("/analytics")
		{
			analytics.POST("/progress", c.analytics.SaveProgress)
			analytics.GET("/progress", c.analytics.GetProgress)
			analytics.GET("/daily", c.analytics.GetDailyActivity)
			analytics.GET("/topics", c.analytics.GetTopicProgress)
			analytics.GET("/recent", c.analytics.GetRecentCards)
		}
	}
}
