package invitation

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/config"
	mw "github.com/stratbook-gg/stratbook/internal/middleware"
	"github.com/stratbook-gg/stratbook/pkg/mailer"
)

// RegisterInvitationRoutes sets up invitation routes.
func RegisterInvitationRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, mail mailer.Sender, log *zap.Logger) {
	service := NewService(db, mail, log, appConfig.App.FrontendURL)
	controller := NewInvitationController(service, appConfig)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/teams/:team_id/invitations", controller.CreateInvitation)
		authRoutes.GET("/teams/:team_id/invitations", controller.ListTeamInvitations)
		authRoutes.GET("/invitations/mine", controller.GetMyInvitations)
		authRoutes.PUT("/invitations/:invitation_id/:action", controller.RespondToInvitation)
		authRoutes.DELETE("/invitations/:invitation_id", controller.CancelInvitation)
	}
}
