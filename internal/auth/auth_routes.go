package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/config"
	"github.com/stratbook-gg/stratbook/internal/invitation"
	mw "github.com/stratbook-gg/stratbook/internal/middleware"
	"github.com/stratbook-gg/stratbook/pkg/mailer"
)

// RegisterAuthRoutes sets up authentication routes.
func RegisterAuthRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, mail mailer.Sender, log *zap.Logger) {
	repo := NewAuthRepository(db)
	invitations := invitation.NewService(db, mail, log, appConfig.App.FrontendURL)
	controller := NewAuthController(repo, invitations, mail, appConfig, log)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", controller.Register)
		authGroup.POST("/login", controller.Login)
		authGroup.POST("/refresh-token", controller.RefreshToken)
		authGroup.GET("/verify-email", controller.VerifyEmail)

		protected := authGroup.Group("/")
		protected.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
		{
			protected.GET("/me", controller.Me)
			protected.POST("/logout", controller.Logout)
		}
	}
}
