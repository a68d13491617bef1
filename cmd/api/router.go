package api

import (
	"net/http"

	"sinara-backend/internal/auth/delivery"
	authdomain "sinara-backend/internal/auth/domain"
	authUsecase "sinara-backend/internal/auth/usecase"
	notifDelivery "sinara-backend/internal/notification/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, notificationHandler *notifDelivery.NotificationHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", delivery.AuthMiddleware(authUsecase), authHandler.Logout)
		}

		// Push registration routes (protected)
		push := api.Group("/push")
		push.Use(delivery.AuthMiddleware(authUsecase))
		{
			push.POST("/register", authHandler.RegisterPushToken)
			push.DELETE("/register", authHandler.UnregisterPushToken)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(delivery.AuthMiddleware(authUsecase))
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PATCH("/read", notificationHandler.MarkRead)
			notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
			notifications.DELETE("", notificationHandler.DeleteAll)

			// Sending is restricted to admins
			admin := notifications.Group("")
			admin.Use(delivery.RequireRoles(authdomain.RoleAdmin))
			{
				admin.POST("/send", notificationHandler.Send)
				admin.POST("/broadcast", notificationHandler.Broadcast)
			}
		}
	}
}
