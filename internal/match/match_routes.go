package match

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/config"
	mw "github.com/stratbook-gg/stratbook/internal/middleware"
	"github.com/stratbook-gg/stratbook/internal/team"
)

// RegisterMatchRoutes sets up match routes. The analyzer is injected so the
// HTTP layer stays independent of the vision provider.
func RegisterMatchRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, analyzer Analyzer, log *zap.Logger) {
	repo := NewMatchRepository(db)
	teamRepo := team.NewTeamRepository(db)
	mapper := NewMapper(db, log)
	controller := NewMatchController(repo, teamRepo, mapper, analyzer, appConfig, log)

	authRoutes := router.Group("/")
	authRoutes.Use(mw.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.GET("/teams/:team_id/matches", controller.ListMatches)
		authRoutes.GET("/matches/:match_id", controller.GetMatch)

		// Writes are coach territory; ownership is still checked per handler.
		coachRoutes := authRoutes.Group("/")
		coachRoutes.Use(mw.CoachOrAdmin())
		{
			coachRoutes.POST("/teams/:team_id/matches/analyze", controller.AnalyzeScreenshot)
			coachRoutes.POST("/teams/:team_id/matches", controller.SaveMatch)
			coachRoutes.DELETE("/matches/:match_id", controller.DeleteMatch)
		}
	}
}
