package invitation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stratbook-gg/stratbook/config"
	"github.com/stratbook-gg/stratbook/internal/common"
	"github.com/stratbook-gg/stratbook/pkg/responses"
	"github.com/stratbook-gg/stratbook/pkg/validator"
)

// InvitationController handles invitation HTTP requests. All business rules
// live in Service; the controller only binds, authenticates and maps errors.
type InvitationController struct {
	service   *Service
	appConfig *config.Config
}

func NewInvitationController(service *Service, appConfig *config.Config) *InvitationController {
	return &InvitationController{service: service, appConfig: appConfig}
}

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrTeamNotFound), errors.Is(err, ErrInviteNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotTeamCoach), errors.Is(err, ErrNotInvitee), errors.Is(err, ErrInviteExpired):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrTeamFull),
		errors.Is(err, ErrInviteAlreadyPending), errors.Is(err, ErrInviteNotPending),
		errors.Is(err, ErrAlreadyOnTeam):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func sendServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		responses.SendError(c, status, "Something went wrong")
		return
	}
	responses.SendError(c, status, err.Error())
}

// CreateInvitation godoc
// @Summary Invite a player to a team
// @Description Creates (or re-issues) an invitation for the email address. Coach of the team or admin only.
// @Tags invitations
// @Accept json
// @Produce json
// @Param team_id path int true "Team ID"
// @Param invitation body CreateInvitationRequest true "Invitee email"
// @Security BearerAuth
// @Success 201 {object} responses.SuccessResponse{data=Invitation}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /teams/{team_id}/invitations [post]
func (ic *InvitationController) CreateInvitation(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role := common.GetUserRoleFromContext(c)

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, validator.ParseError(err))
		return
	}

	inv, err := ic.service.Create(userID, role, uint(teamID), req.Email)
	if err != nil {
		sendServiceError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Invitation sent", inv)
}

// ListTeamInvitations godoc
// @Summary List a team's invitations
// @Tags invitations
// @Produce json
// @Param team_id path int true "Team ID"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=[]Invitation}
// @Failure 403 {object} responses.ErrorResponse
// @Router /teams/{team_id}/invitations [get]
func (ic *InvitationController) ListTeamInvitations(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role := common.GetUserRoleFromContext(c)

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID format")
		return
	}

	invs, err := ic.service.ListForTeam(userID, role, uint(teamID))
	if err != nil {
		sendServiceError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Invitations retrieved successfully", invs)
}

// GetMyInvitations godoc
// @Summary List invitations addressed to me
// @Description Returns invitations for the authenticated user's email address.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=[]Invitation}
// @Failure 401 {object} responses.ErrorResponse
// @Router /invitations/mine [get]
func (ic *InvitationController) GetMyInvitations(c *gin.Context) {
	email, err := ic.sessionEmail(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	invs, err := ic.service.ListForEmail(email)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve invitations")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Invitations retrieved successfully", invs)
}

// RespondToInvitation godoc
// @Summary Accept or decline an invitation
// @Description Action must be "accept" or "decline". Only the invited email's account may respond.
// @Tags invitations
// @Produce json
// @Param invitation_id path int true "Invitation ID"
// @Param action path string true "accept or decline"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=Invitation}
// @Failure 403 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /invitations/{invitation_id}/{action} [put]
func (ic *InvitationController) RespondToInvitation(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	email, err := ic.sessionEmail(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	invitationID, err := strconv.ParseUint(c.Param("invitation_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid invitation ID format")
		return
	}

	action := c.Param("action")
	if action != "accept" && action != "decline" {
		responses.SendError(c, http.StatusBadRequest, "Action must be 'accept' or 'decline'")
		return
	}

	inv, err := ic.service.Respond(userID, email, uint(invitationID), action == "accept")
	if err != nil {
		sendServiceError(c, err)
		return
	}

	message := "Invitation declined"
	if action == "accept" {
		message = "Invitation accepted"
	}
	responses.SendSuccess(c, http.StatusOK, message, inv)
}

// CancelInvitation godoc
// @Summary Cancel an invitation
// @Description Deletes the invitation. Coach of the team or admin only.
// @Tags invitations
// @Produce json
// @Param invitation_id path int true "Invitation ID"
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /invitations/{invitation_id} [delete]
func (ic *InvitationController) CancelInvitation(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	role := common.GetUserRoleFromContext(c)

	invitationID, err := strconv.ParseUint(c.Param("invitation_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid invitation ID format")
		return
	}

	if err := ic.service.Cancel(userID, role, uint(invitationID)); err != nil {
		sendServiceError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Invitation cancelled", nil)
}

// sessionEmail loads the authenticated user's email. Invitations are keyed by
// email, not user ID, so responses are authorized against it.
func (ic *InvitationController) sessionEmail(c *gin.Context) (string, error) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		return "", err
	}
	u, err := ic.service.userByID(userID)
	if err != nil || u == nil {
		return "", errors.New("user not found")
	}
	return u.Email, nil
}
