package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stratbook-gg/stratbook/internal/common"
	"github.com/stratbook-gg/stratbook/pkg/responses"
)

// NotificationController handles notification HTTP requests.
type NotificationController struct {
	repo NotificationRepository
}

func NewNotificationController(repo NotificationRepository) *NotificationController {
	return &NotificationController{repo: repo}
}

// GetMyNotifications godoc
// @Summary Get my notifications
// @Description Retrieves notifications for the authenticated user, newest first.
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param unread query bool false "Only unread notifications" default(false)
// @Success 200 {object} responses.PaginatedResponse{data=[]Notification}
// @Failure 401 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /notifications [get]
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	notifications, total, err := nc.repo.GetByUserID(userID, unreadOnly, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve notifications: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Notifications retrieved successfully", notifications, total, page, limit)
}

// UnreadCount godoc
// @Summary Count my unread notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	count, err := nc.repo.CountUnread(userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to count notifications")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Unread count retrieved successfully", gin.H{"unread": count})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param notification_id path uint true "Notification ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{notification_id}/read [put]
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := strconv.ParseUint(c.Param("notification_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := nc.repo.MarkRead(uint(id), userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			responses.SendError(c, http.StatusNotFound, "Notification not found")
			return
		}
		responses.SendError(c, http.StatusInternalServerError, "Failed to mark notification as read: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllRead godoc
// @Summary Mark all my notifications as read
// @Tags Notifications
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /notifications/read-all [put]
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := nc.repo.MarkAllRead(userID); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to mark notifications as read: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "All notifications marked as read", nil)
}
