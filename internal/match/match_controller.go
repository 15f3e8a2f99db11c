package match

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stratbook-gg/stratbook/config"
	"github.com/stratbook-gg/stratbook/internal/common"
	"github.com/stratbook-gg/stratbook/internal/team"
	"github.com/stratbook-gg/stratbook/internal/user"
	"github.com/stratbook-gg/stratbook/pkg/responses"
	"github.com/stratbook-gg/stratbook/pkg/validator"
)

// MaxScreenshotBytes caps uploaded scoreboard images.
const MaxScreenshotBytes = 10 << 20 // 10 MiB

// Analyzer extracts a structured scoreboard from a screenshot image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, contentType string) (*AnalysisResult, error)
}

// MatchController handles match HTTP requests.
type MatchController struct {
	repo      MatchRepository
	teamRepo  team.TeamRepository
	mapper    *Mapper
	analyzer  Analyzer
	appConfig *config.Config
	log       *zap.Logger
}

func NewMatchController(repo MatchRepository, teamRepo team.TeamRepository, mapper *Mapper, analyzer Analyzer, appConfig *config.Config, log *zap.Logger) *MatchController {
	return &MatchController{
		repo:      repo,
		teamRepo:  teamRepo,
		mapper:    mapper,
		analyzer:  analyzer,
		appConfig: appConfig,
		log:       log,
	}
}

// AnalyzeResponse is returned by the analyze endpoint. The analysis is
// always included; Saved is false with SaveError set when persistence
// failed, so a coach never loses an expensive analyzer round-trip.
type AnalyzeResponse struct {
	Analysis  *AnalysisResult `json:"analysis"`
	Match     *Match          `json:"match,omitempty"`
	Saved     bool            `json:"saved"`
	SaveError string          `json:"save_error,omitempty"`
}

// loadManagedTeam fetches the team and checks coach/admin access.
func (mc *MatchController) loadManagedTeam(c *gin.Context) (*team.Team, uint, bool) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return nil, 0, false
	}
	role := common.GetUserRoleFromContext(c)

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return nil, 0, false
	}

	t, err := mc.teamRepo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
		return nil, 0, false
	}
	if t == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return nil, 0, false
	}
	if role != user.RoleAdmin && t.CoachID != userID {
		responses.SendError(c, http.StatusForbidden, "Only the team's coach can manage matches")
		return nil, 0, false
	}
	return t, userID, true
}

// AnalyzeScreenshot godoc
// @Summary Analyze a scoreboard screenshot
// @Description Runs the uploaded screenshot through the vision analyzer and saves the resulting match. The analysis is returned even when saving fails.
// @Tags matches
// @Accept multipart/form-data
// @Produce json
// @Param team_id path int true "Team ID"
// @Param screenshot formData file true "Scoreboard screenshot"
// @Security BearerAuth
// @Success 201 {object} responses.SuccessResponse{data=AnalyzeResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Router /teams/{team_id}/matches/analyze [post]
func (mc *MatchController) AnalyzeScreenshot(c *gin.Context) {
	t, userID, ok := mc.loadManagedTeam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "A 'screenshot' file is required")
		return
	}
	if fileHeader.Size > MaxScreenshotBytes {
		responses.SendError(c, http.StatusBadRequest, "Screenshot exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Failed to read screenshot")
		return
	}
	defer file.Close()
	image, err := io.ReadAll(io.LimitReader(file, MaxScreenshotBytes))
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Failed to read screenshot")
		return
	}

	analysis, err := mc.analyzer.Analyze(c.Request.Context(), image, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		mc.log.Error("scoreboard analysis failed", zap.Uint("team_id", t.ID), zap.Error(err))
		responses.SendError(c, http.StatusBadGateway, "Scoreboard analysis failed")
		return
	}

	resp := AnalyzeResponse{Analysis: analysis}
	saved, err := mc.mapper.SaveFromAnalysis(t.ID, userID, analysis)
	if err != nil {
		// The analysis still goes back to the caller for manual review.
		mc.log.Warn("failed to save analyzed match", zap.Uint("team_id", t.ID), zap.Error(err))
		resp.SaveError = saveErrorMessage(err)
		responses.SendSuccess(c, http.StatusOK, "Scoreboard analyzed but not saved", resp)
		return
	}
	resp.Match = saved
	resp.Saved = true
	responses.SendSuccess(c, http.StatusCreated, "Match analyzed and saved", resp)
}

// SaveMatch godoc
// @Summary Save a match from an analysis document
// @Description Maps a previously produced analysis JSON onto the team and persists it.
// @Tags matches
// @Accept json
// @Produce json
// @Param team_id path int true "Team ID"
// @Param analysis body AnalysisResult true "Scoreboard analysis"
// @Security BearerAuth
// @Success 201 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Router /teams/{team_id}/matches [post]
func (mc *MatchController) SaveMatch(c *gin.Context) {
	t, userID, ok := mc.loadManagedTeam(c)
	if !ok {
		return
	}

	var analysis AnalysisResult
	if err := c.ShouldBindJSON(&analysis); err != nil {
		responses.SendError(c, http.StatusBadRequest, validator.ParseError(err))
		return
	}

	saved, err := mc.mapper.SaveFromAnalysis(t.ID, userID, &analysis)
	if err != nil {
		if errors.Is(err, ErrNoVisibleTeam) {
			responses.SendError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		responses.SendError(c, http.StatusInternalServerError, "Failed to save match")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Match saved", saved)
}

// ListMatches godoc
// @Summary List a team's matches
// @Tags matches
// @Produce json
// @Param team_id path int true "Team ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Security BearerAuth
// @Success 200 {object} responses.PaginatedResponse{data=[]Match}
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{team_id}/matches [get]
func (mc *MatchController) ListMatches(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return
	}

	t, err := mc.teamRepo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
		return
	}
	if t == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	matches, total, err := mc.repo.ListByTeam(t.ID, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve matches")
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Matches retrieved successfully", matches, total, page, limit)
}

// GetMatch godoc
// @Summary Get a match with its player stats
// @Tags matches
// @Produce json
// @Param match_id path int true "Match ID"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 404 {object} responses.ErrorResponse
// @Router /matches/{match_id} [get]
func (mc *MatchController) GetMatch(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("match_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid match ID format")
		return
	}

	m, err := mc.repo.GetByID(uint(matchID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}
	if m == nil {
		responses.SendError(c, http.StatusNotFound, "Match not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match retrieved successfully", m)
}

// DeleteMatch godoc
// @Summary Delete a match
// @Description Removes the match and all of its player stat lines.
// @Tags matches
// @Produce json
// @Param match_id path int true "Match ID"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /matches/{match_id} [delete]
func (mc *MatchController) DeleteMatch(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role := common.GetUserRoleFromContext(c)

	matchID, err := strconv.ParseUint(c.Param("match_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid match ID format")
		return
	}

	m, err := mc.repo.GetByID(uint(matchID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}
	if m == nil {
		responses.SendError(c, http.StatusNotFound, "Match not found")
		return
	}

	t, err := mc.teamRepo.GetTeamByID(m.TeamID)
	if err != nil || t == nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
		return
	}
	if role != user.RoleAdmin && t.CoachID != userID {
		responses.SendError(c, http.StatusForbidden, "Only the team's coach can delete matches")
		return
	}

	if err := mc.repo.Delete(m.ID); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to delete match")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match deleted", nil)
}

func saveErrorMessage(err error) string {
	if errors.Is(err, ErrNoVisibleTeam) {
		return err.Error()
	}
	return "failed to save match"
}
