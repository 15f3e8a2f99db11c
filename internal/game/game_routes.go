package game

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterGameRoutes sets up the public game catalog routes.
func RegisterGameRoutes(router *gin.RouterGroup, db *gorm.DB) {
	controller := NewGameController(NewGameRepository(db))

	router.GET("/games", controller.GetGames)
	router.GET("/games/:slug", controller.GetGame)
}
