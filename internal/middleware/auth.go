package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/util"
	"go.uber.org/zap"
)

// TokenValidator resolves a bearer token to the user it was issued for
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the caller's user id in the context under util.ContextUserIDKey.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			util.RespondUnauthorized(c, "no token provided")
			c.Abort()
			return
		}

		userID, err := tokens.ValidateToken(token)
		if err != nil {
			logger.Log.Debug("Rejected bearer token", logger.WithIP(c.ClientIP()), zap.Error(err))
			util.RespondUnauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(util.ContextUserIDKey, userID)
		c.Next()
	}
}
