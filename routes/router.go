package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/config"
	"github.com/stratbook-gg/stratbook/internal/auth"
	"github.com/stratbook-gg/stratbook/internal/game"
	"github.com/stratbook-gg/stratbook/internal/invitation"
	"github.com/stratbook-gg/stratbook/internal/match"
	"github.com/stratbook-gg/stratbook/internal/notification"
	"github.com/stratbook-gg/stratbook/internal/team"
	"github.com/stratbook-gg/stratbook/internal/vision"
	"github.com/stratbook-gg/stratbook/pkg/mailer"
)

// SetupRoutes wires every feature under /api and returns the engine.
func SetupRoutes(db *gorm.DB, appConfig *config.Config, log *zap.Logger) *gin.Engine {
	if appConfig.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var mail mailer.Sender = mailer.NoopMailer{}
	if appConfig.Mail.ProviderURL != "" {
		mail = mailer.NewAPIMailer(appConfig.Mail.ProviderURL, appConfig.Mail.APIKey, appConfig.Mail.From)
	}

	var analyzer match.Analyzer = vision.StaticAnalyzer{Err: vision.ErrNotConfigured}
	if appConfig.Vision.APIURL != "" {
		analyzer = vision.NewAPIAnalyzer(appConfig.Vision.APIURL, appConfig.Vision.APIKey, appConfig.Vision.Model)
	}

	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, db, appConfig, mail, log)
	team.RegisterTeamRoutes(api, db, appConfig, log)
	invitation.RegisterInvitationRoutes(api, db, appConfig, mail, log)
	match.RegisterMatchRoutes(api, db, appConfig, analyzer, log)
	notification.RegisterNotificationRoutes(api, db, appConfig)
	game.RegisterGameRoutes(api, db)

	return r
}
