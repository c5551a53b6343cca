package util

import (
	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/errors"
)

// ContextUserIDKey is where the auth middleware stores the caller's user id
const ContextUserIDKey = "user_id"

// GetUserIDFromContext extracts the authenticated user id from the Gin context.
// If the request is not authenticated it responds with 401 and returns false.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		RespondUnauthorized(c)
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		RespondWithAPIError(c, errors.InternalError("invalid user ID in context"))
		return "", false
	}
	return userIDStr, true
}
