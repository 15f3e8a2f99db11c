package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/stratbook-gg/stratbook/config"
	_ "github.com/stratbook-gg/stratbook/docs"
	"github.com/stratbook-gg/stratbook/internal/game"
	"github.com/stratbook-gg/stratbook/internal/invitation"
	"github.com/stratbook-gg/stratbook/internal/match"
	"github.com/stratbook-gg/stratbook/internal/notification"
	"github.com/stratbook-gg/stratbook/internal/team"
	"github.com/stratbook-gg/stratbook/internal/user"
	"github.com/stratbook-gg/stratbook/pkg/logging"
	"github.com/stratbook-gg/stratbook/routes"
)

// @title Stratbook REST API
// @version 1.0
// @description Esports coaching platform: teams, invitations, scoreboard analysis.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	cfg := config.GetConfig()

	logger := logging.New(cfg.App.Env)
	defer logger.Sync()

	err := config.DB.AutoMigrate(
		&user.User{}, &user.RefreshToken{},
		&team.Team{},
		&invitation.Invitation{},
		&match.Match{}, &match.PlayerStats{},
		&notification.Notification{},
		&game.Game{},
	)
	if err != nil {
		logger.Fatal("automigrate failed", zap.Error(err))
	}
	if err := game.Seed(config.DB); err != nil {
		logger.Warn("game catalog seed failed", zap.Error(err))
	}

	r := routes.SetupRoutes(config.DB, cfg, logger)

	logger.Info("starting server",
		zap.String("port", cfg.App.Port),
		zap.String("env", cfg.App.Env),
	)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
