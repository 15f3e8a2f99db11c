package team

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stratbook-gg/stratbook/config"
	"github.com/stratbook-gg/stratbook/internal/common"
	"github.com/stratbook-gg/stratbook/internal/notification"
	"github.com/stratbook-gg/stratbook/internal/user"
	"github.com/stratbook-gg/stratbook/pkg/responses"
	"github.com/stratbook-gg/stratbook/pkg/validator"
)

// TeamController handles team and roster HTTP requests.
type TeamController struct {
	repo      TeamRepository
	emitter   *notification.Emitter
	appConfig *config.Config
}

// NewTeamController creates a new team controller.
func NewTeamController(repo TeamRepository, emitter *notification.Emitter, appConfig *config.Config) *TeamController {
	return &TeamController{
		repo:      repo,
		emitter:   emitter,
		appConfig: appConfig,
	}
}

// canManageTeam reports whether the current session may perform coach-level
// actions on the team (owning coach or admin).
func canManageTeam(c *gin.Context, t *Team) bool {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		return false
	}
	role := common.GetUserRoleFromContext(c)
	return role == user.RoleAdmin || t.CoachID == userID
}

type CreateTeamRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	Game string `json:"game" binding:"max=100"`
}

type RosterMember struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type TeamResponse struct {
	Team       Team           `json:"team"`
	RosterSize int64          `json:"roster_size"`
	Roster     []RosterMember `json:"roster,omitempty"`
}

func toRosterMembers(users []user.User) []RosterMember {
	members := make([]RosterMember, 0, len(users))
	for _, u := range users {
		members = append(members, RosterMember{
			ID:       u.ID,
			Name:     u.Name,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		})
	}
	return members
}

// CreateTeam godoc
// @Summary Create a new team
// @Description Creates a team owned by the current coach. Admins may also create teams.
// @Tags teams
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team details"
// @Security BearerAuth
// @Success 201 {object} responses.SuccessResponse{data=Team}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role := common.GetUserRoleFromContext(c)
	if role != user.RoleCoach && role != user.RoleAdmin {
		responses.SendError(c, http.StatusForbidden, "Only coaches can create teams")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, validator.ParseError(err))
		return
	}

	existing, err := tc.repo.GetTeamByName(req.Name)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check team name")
		return
	}
	if existing != nil {
		responses.SendError(c, http.StatusConflict, "A team with this name already exists")
		return
	}

	team := Team{
		Name:    req.Name,
		Game:    req.Game,
		CoachID: userID,
	}
	if err := tc.repo.CreateTeam(&team); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create team")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", team)
}

type UpdateTeamRequest struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
	Game *string `json:"game" binding:"omitempty,max=100"`
}

// UpdateTeam godoc
// @Summary Update a team
// @Description Renames the team or changes its game. Owning coach or admin only.
// @Tags teams
// @Accept json
// @Produce json
// @Param team_id path int true "Team ID"
// @Param team body UpdateTeamRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{team_id} [put]
func (tc *TeamController) UpdateTeam(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
		return
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}
	if !canManageTeam(c, team) {
		responses.SendError(c, http.StatusForbidden, "Only the team's coach can update it")
		return
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, validator.ParseError(err))
		return
	}

	if req.Name != nil && *req.Name != team.Name {
		existing, err := tc.repo.GetTeamByName(*req.Name)
		if err != nil {
			responses.SendError(c, http.StatusInternalServerError, "Failed to check team name")
			return
		}
		if existing != nil {
			responses.SendError(c, http.StatusConflict, "A team with this name already exists")
			return
		}
		team.Name = *req.Name
	}
	if req.Game != nil {
		team.Game = *req.Game
	}

	if err := tc.repo.UpdateTeam(team); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to update team")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team updated successfully", team)
}

// GetTeamByID godoc
// @Summary Get a team
// @Description Returns a team with its roster and validation state.
// @Tags teams
// @Produce json
// @Param team_id path int true "Team ID"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=TeamResponse}
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{team_id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
		return
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}

	roster, err := tc.repo.GetRoster(team.ID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve roster")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", TeamResponse{
		Team:       *team,
		RosterSize: int64(len(roster)),
		Roster:     toRosterMembers(roster),
	})
}

// GetMyTeams godoc
// @Summary List my teams
// @Description For coaches, the teams they own. For players, the team they belong to.
// @Tags teams
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=[]Team}
// @Failure 401 {object} responses.ErrorResponse
// @Router /teams/mine [get]
func (tc *TeamController) GetMyTeams(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role := common.GetUserRoleFromContext(c)

	if role == user.RoleCoach || role == user.RoleAdmin {
		teams, err := tc.repo.GetTeamsByCoachID(userID)
		if err != nil {
			responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve teams")
			return
		}
		responses.SendSuccess(c, http.StatusOK, "Teams retrieved successfully", teams)
		return
	}

	// Players belong to at most one team.
	u, err := tc.repo.GetUserByID(userID)
	if err != nil || u == nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}
	teams := []Team{}
	if u.TeamID != nil {
		team, err := tc.repo.GetTeamByID(*u.TeamID)
		if err != nil {
			responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
			return
		}
		if team != nil {
			teams = append(teams, *team)
		}
	}
	responses.SendSuccess(c, http.StatusOK, "Teams retrieved successfully", teams)
}

// GetRoster godoc
// @Summary Get the team roster
// @Tags teams
// @Produce json
// @Param team_id path int true "Team ID"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=[]RosterMember}
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{team_id}/roster [get]
func (tc *TeamController) GetRoster(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
		return
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}

	roster, err := tc.repo.GetRoster(team.ID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve roster")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Roster retrieved successfully", toRosterMembers(roster))
}

// RemovePlayer godoc
// @Summary Remove a player from the roster
// @Description Detaches the player from the team and re-derives the team's validation state.
// @Tags teams
// @Produce json
// @Param team_id path int true "Team ID"
// @Param user_id path int true "User ID of the player"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{team_id}/roster/{user_id} [delete]
func (tc *TeamController) RemovePlayer(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return
	}
	playerID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	team, err := tc.repo.GetTeamByID(uint(teamID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve team")
		return
	}
	if team == nil {
		responses.SendError(c, http.StatusNotFound, "Team not found")
		return
	}
	if !canManageTeam(c, team) {
		responses.SendError(c, http.StatusForbidden, "Only the team's coach can remove players")
		return
	}

	player, err := tc.repo.GetUserByID(uint(playerID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve player")
		return
	}
	if player == nil {
		responses.SendError(c, http.StatusNotFound, "Player not found")
		return
	}
	if player.TeamID == nil || *player.TeamID != team.ID {
		responses.SendError(c, http.StatusNotFound, "Player is not on this team")
		return
	}

	err = tc.repo.WithTransaction(func(txRepo TeamRepository) error {
		if err := txRepo.RemovePlayer(player.ID); err != nil {
			return err
		}
		_, err := txRepo.RecomputeValidation(team.ID)
		return err
	})
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to remove player")
		return
	}

	tc.emitter.Emit(player.ID, notification.TypePlayerRemoved,
		"Removed from team",
		"You have been removed from the team "+team.Name+".",
		map[string]interface{}{"team_id": team.ID},
	)

	responses.SendSuccess(c, http.StatusOK, "Player removed from team", nil)
}
