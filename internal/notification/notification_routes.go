package notification

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/config"
	"github.com/stratbook-gg/stratbook/internal/middleware"
)

func RegisterNotificationRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewNotificationRepository(db)
	controller := NewNotificationController(repo)

	notifications := router.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		notifications.GET("", controller.GetMyNotifications)
		notifications.GET("/unread-count", controller.UnreadCount)
		notifications.PUT("/:notification_id/read", controller.MarkRead)
		notifications.PUT("/read-all", controller.MarkAllRead)
	}
}
