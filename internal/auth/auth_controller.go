package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stratbook-gg/stratbook/config"
	"github.com/stratbook-gg/stratbook/internal/common"
	"github.com/stratbook-gg/stratbook/internal/invitation"
	"github.com/stratbook-gg/stratbook/internal/user"
	"github.com/stratbook-gg/stratbook/pkg/mailer"
	"github.com/stratbook-gg/stratbook/pkg/responses"
	"github.com/stratbook-gg/stratbook/pkg/token"
	"github.com/stratbook-gg/stratbook/pkg/utils"
	"github.com/stratbook-gg/stratbook/pkg/validator"
)

// AuthController handles registration, sessions and email verification.
type AuthController struct {
	repo        AuthRepository
	invitations *invitation.Service
	mail        mailer.Sender
	appConfig   *config.Config
	log         *zap.Logger
}

func NewAuthController(repo AuthRepository, invitations *invitation.Service, mail mailer.Sender, appConfig *config.Config, log *zap.Logger) *AuthController {
	return &AuthController{
		repo:        repo,
		invitations: invitations,
		mail:        mail,
		appConfig:   appConfig,
		log:         log,
	}
}

// issueTokens mints the access/refresh pair and persists the refresh token.
func (ac *AuthController) issueTokens(u *user.User) (string, string, error) {
	access, err := token.GenerateJWT(u.ID, u.Role, ac.appConfig.JWT.AccessTokenSecret, ac.appConfig.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		return "", "", err
	}
	refresh, err := token.GenerateRefreshToken(u.ID, ac.appConfig.JWT.RefreshTokenSecret, ac.appConfig.JWT.RefreshTokenExpiryDays)
	if err != nil {
		return "", "", err
	}
	rt := user.RefreshToken{
		UserID:    u.ID,
		Token:     refresh,
		ExpiresAt: time.Now().AddDate(0, 0, ac.appConfig.JWT.RefreshTokenExpiryDays),
	}
	if err := ac.repo.CreateRefreshToken(&rt); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Register godoc
// @Summary Register a new account
// @Description Creates a coach or player account. Passing invite_token accepts the matching team invitation as part of the signup.
// @Tags auth
// @Accept json
// @Produce json
// @Param account body RegisterRequest true "Account details"
// @Success 201 {object} responses.SuccessResponse{data=AuthResponse}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, validator.ParseError(err))
		return
	}

	if existing, err := ac.repo.GetUserByEmail(req.Email); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check email")
		return
	} else if existing != nil {
		responses.SendError(c, http.StatusConflict, "An account with this email already exists")
		return
	}
	if existing, err := ac.repo.GetUserByUsername(req.Username); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check username")
		return
	} else if existing != nil {
		responses.SendError(c, http.StatusConflict, "This username is already taken")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to process password")
		return
	}

	verifyExpires := time.Now().Add(48 * time.Hour)
	u := user.User{
		Name:          req.Name,
		Username:      req.Username,
		Email:         req.Email,
		Password:      hashed,
		Role:          req.Role,
		VerifyToken:   utils.GenerateRandomToken(32),
		VerifyExpires: &verifyExpires,
	}
	if err := ac.repo.CreateUser(&u); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	mailer.SendAsync(ac.mail, ac.log, u.Email, mailer.TemplateEmailVerify, map[string]string{
		"name":       u.Name,
		"verify_url": fmt.Sprintf("%s/verify-email?token=%s", ac.appConfig.App.FrontendURL, u.VerifyToken),
	})

	// Accepting from the invite link lands the player on the roster without a
	// second round-trip. A failed accept does not fail the signup.
	if req.InviteToken != "" {
		if _, err := ac.invitations.AcceptByToken(u.ID, u.Email, req.InviteToken); err != nil {
			ac.log.Warn("invitation accept during signup failed",
				zap.Uint("user_id", u.ID), zap.Error(err))
		} else if refreshed, err := ac.repo.GetUserByID(u.ID); err == nil && refreshed != nil {
			u = *refreshed
		}
	}

	access, refresh, err := ac.issueTokens(&u)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Account created successfully", AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         FilterUserRecord(&u),
	})
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} responses.SuccessResponse{data=AuthResponse}
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, validator.ParseError(err))
		return
	}

	u, err := ac.repo.GetUserByEmail(req.Email)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to look up account")
		return
	}
	if u == nil || !u.HasPassword() || !utils.CheckPassword(u.Password, req.Password) {
		responses.SendError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	u.LastActive = time.Now()
	if err := ac.repo.UpdateUser(u); err != nil {
		ac.log.Warn("failed to update last active", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	access, refresh, err := ac.issueTokens(u)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Logged in successfully", AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         FilterUserRecord(u),
	})
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param token body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} responses.SuccessResponse{data=AuthResponse}
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/refresh-token [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, validator.ParseError(err))
		return
	}

	if _, err := token.ValidateJWT(req.RefreshToken, ac.appConfig.JWT.RefreshTokenSecret); err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	rt, err := ac.repo.GetRefreshToken(req.RefreshToken)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to look up session")
		return
	}
	if rt == nil || time.Now().After(rt.ExpiresAt) {
		responses.SendError(c, http.StatusUnauthorized, "Session expired, please log in again")
		return
	}

	u, err := ac.repo.GetUserByID(rt.UserID)
	if err != nil || u == nil {
		responses.SendError(c, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	// Rotate: the old token is single-use.
	if err := ac.repo.RevokeRefreshToken(rt.Token); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to rotate session")
		return
	}

	access, refresh, err := ac.issueTokens(u)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Token refreshed", AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         FilterUserRecord(u),
	})
}

// Me godoc
// @Summary Get the authenticated account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse{data=UserResponse}
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	u, err := ac.repo.GetUserByID(userID)
	if err != nil || u == nil {
		responses.SendError(c, http.StatusNotFound, "Account not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Account retrieved successfully", FilterUserRecord(u))
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /auth/verify-email [get]
func (ac *AuthController) VerifyEmail(c *gin.Context) {
	verifyToken := c.Query("token")
	if verifyToken == "" {
		responses.SendError(c, http.StatusBadRequest, "A verification token is required")
		return
	}

	u, err := ac.repo.GetUserByVerifyToken(verifyToken)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to verify email")
		return
	}
	if u == nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}

	u.EmailVerified = true
	u.VerifyToken = ""
	u.VerifyExpires = nil
	if err := ac.repo.UpdateUser(u); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to verify email")
		return
	}

	mailer.SendAsync(ac.mail, ac.log, u.Email, mailer.TemplateWelcome, map[string]string{"name": u.Name})
	responses.SendSuccess(c, http.StatusOK, "Email verified successfully", nil)
}

// Logout godoc
// @Summary Log out
// @Description Revokes all of the account's refresh tokens.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}
	if err := ac.repo.RevokeAllRefreshTokens(userID); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Logged out successfully", nil)
}
