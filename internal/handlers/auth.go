package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/auth"
	"github.com/talentnet/backend/internal/errors"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/models"
	"github.com/talentnet/backend/internal/util"
)

// ChangePasswordRequest is the body of PUT /api/auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// ChangeEmailRequest is the body of PUT /api/auth/change-email
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// DeleteAccountRequest is the body of DELETE /api/auth/delete-account
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns a session token
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		h.recordAuth("register", false)
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.recordAuth("register", false)
		util.RespondError(c, authError(err))
		return
	}

	h.recordAuth("register", true)
	logger.Log.Info("User registered", logger.WithUserID(resp.User.ID))
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges email and password for a session token
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		h.recordAuth("login", false)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.recordAuth("login", false)
		util.RespondError(c, authError(err))
		return
	}

	h.recordAuth("login", true)
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's own account
func (h *Handlers) Me(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, authError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"online": h.isOnline(user.ID),
	})
}

// ChangePassword replaces the caller's password
func (h *Handlers) ChangePassword(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.recordAuth("change_password", false)
		util.RespondError(c, authError(err))
		return
	}

	h.recordAuth("change_password", true)
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// ChangeEmail moves the caller's account to a new email address
func (h *Handlers) ChangeEmail(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req ChangeEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.ChangeEmail(c.Request.Context(), userID, req.Password, strings.TrimSpace(req.NewEmail))
	if err != nil {
		h.recordAuth("change_email", false)
		util.RespondError(c, authError(err))
		return
	}

	h.recordAuth("change_email", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "email updated",
		"user":    user,
	})
}

// DeleteAccount permanently removes the caller's account
func (h *Handlers) DeleteAccount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req DeleteAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), userID, req.Password); err != nil {
		h.recordAuth("delete_account", false)
		util.RespondError(c, authError(err))
		return
	}

	h.recordAuth("delete_account", true)
	logger.Log.Info("Account deleted", logger.WithUserID(userID))
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h *Handlers) recordAuth(action string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	h.metrics.AuthAttemptsTotal.WithLabelValues(action, outcome).Inc()
}

// authError maps auth service errors onto API errors
func authError(err error) error {
	switch {
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		return errors.Unauthorized("invalid email or password")
	case stderrors.Is(err, auth.ErrUserExists):
		return errors.Conflict("a user with this email already exists")
	case stderrors.Is(err, auth.ErrInvalidRole):
		return errors.ValidationError("role", "role must be one of: "+strings.Join(models.Roles, ", "))
	case stderrors.Is(err, auth.ErrWeakPassword):
		return errors.ValidationError("password", err.Error())
	case stderrors.Is(err, auth.ErrUserNotFound):
		return errors.NotFound("user")
	default:
		return err
	}
}
