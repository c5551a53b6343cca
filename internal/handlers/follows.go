package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/models"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/util"
	"go.uber.org/zap"
)

// FollowUser makes the caller follow the user in the path
// POST /api/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if targetID == userID {
		util.RespondBadRequest(c, "you cannot follow yourself")
		return
	}

	if !h.requireUser(c, targetID) {
		return
	}

	err := h.follows.Follow(c.Request.Context(), userID, targetID)
	if stderrors.Is(err, repository.ErrAlreadyFollowing) {
		util.RespondBadRequest(c, "you are already following this user")
		return
	}
	if err != nil {
		util.RespondError(c, err)
		return
	}

	logger.Log.Debug("User followed", zap.String("follower", userID), zap.String("followee", targetID))
	h.respondFollowersCount(c, targetID, "user followed")
}

// UnfollowUser removes the caller's follow of the user in the path
// DELETE /api/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if !h.requireUser(c, targetID) {
		return
	}

	err := h.follows.Unfollow(c.Request.Context(), userID, targetID)
	if stderrors.Is(err, repository.ErrNotFollowing) {
		util.RespondBadRequest(c, "you are not following this user")
		return
	}
	if err != nil {
		util.RespondError(c, err)
		return
	}

	h.respondFollowersCount(c, targetID, "user unfollowed")
}

// GetFollowers lists who follows the user in the path
// GET /api/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	h.listFollowEdges(c, h.follows.ListFollowers)
}

// GetFollowing lists who the user in the path follows
// GET /api/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	h.listFollowEdges(c, h.follows.ListFollowing)
}

type followLister func(ctx context.Context, userID string, limit, offset int) ([]models.User, error)

func (h *Handlers) listFollowEdges(c *gin.Context, list followLister) {
	userID := c.Param("id")
	if !h.requireUser(c, userID) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := list(c.Request.Context(), userID, limit, offset)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToPublicProfile(h.isOnline(users[i].ID)))
	}
	c.JSON(http.StatusOK, gin.H{
		"users": profiles,
		"count": len(profiles),
	})
}

// requireUser responds 404 and returns false when userID does not exist
func (h *Handlers) requireUser(c *gin.Context, userID string) bool {
	exists, err := h.users.Exists(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return false
	}
	if !exists {
		util.RespondNotFound(c, "user")
		return false
	}
	return true
}

func (h *Handlers) respondFollowersCount(c *gin.Context, userID, message string) {
	count, err := h.follows.CountFollowers(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         message,
		"followers_count": count,
	})
}
