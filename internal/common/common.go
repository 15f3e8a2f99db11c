package common

import (
	"errors"

	"github.com/gin-gonic/gin"
)

const (
	// Context keys set by the auth middleware.
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// GetUserIDFromContext retrieves the authenticated user's ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}
	userID, ok := v.(uint)
	if !ok {
		return 0, errors.New("user ID in context is not of type uint")
	}
	return userID, nil
}

// GetUserRoleFromContext retrieves the authenticated user's role, "" when absent.
func GetUserRoleFromContext(c *gin.Context) string {
	v, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return ""
	}
	role, _ := v.(string)
	return role
}
