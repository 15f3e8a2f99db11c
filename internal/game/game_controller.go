package game

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stratbook-gg/stratbook/pkg/responses"
)

// GameController serves the read-only game catalog.
type GameController struct {
	repo GameRepository
}

func NewGameController(repo GameRepository) *GameController {
	return &GameController{repo: repo}
}

// GetGames godoc
// @Summary List supported games
// @Tags games
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]Game}
// @Router /games [get]
func (gc *GameController) GetGames(c *gin.Context) {
	games, err := gc.repo.GetAll(true)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve games")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Games retrieved successfully", games)
}

// GetGame godoc
// @Summary Get one game by slug
// @Tags games
// @Produce json
// @Param slug path string true "Game slug"
// @Success 200 {object} responses.SuccessResponse{data=Game}
// @Failure 404 {object} responses.ErrorResponse
// @Router /games/{slug} [get]
func (gc *GameController) GetGame(c *gin.Context) {
	g, err := gc.repo.GetBySlug(c.Param("slug"))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve game")
		return
	}
	if g == nil {
		responses.SendError(c, http.StatusNotFound, "Game not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Game retrieved successfully", g)
}
