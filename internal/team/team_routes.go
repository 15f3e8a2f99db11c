package team

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/config"
	mw "github.com/stratbook-gg/stratbook/internal/middleware"
	"github.com/stratbook-gg/stratbook/internal/notification"
)

// RegisterTeamRoutes sets up all team and roster routes.
func RegisterTeamRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, log *zap.Logger) {
	repo := NewTeamRepository(db)
	emitter := notification.NewEmitter(db, log)
	controller := NewTeamController(repo, emitter, appConfig)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/teams", controller.CreateTeam)
		authRoutes.GET("/teams/mine", controller.GetMyTeams)
		authRoutes.GET("/teams/:team_id", controller.GetTeamByID)
		authRoutes.PUT("/teams/:team_id", controller.UpdateTeam)
		authRoutes.GET("/teams/:team_id/roster", controller.GetRoster)
		authRoutes.DELETE("/teams/:team_id/roster/:user_id", controller.RemovePlayer)
	}
}
