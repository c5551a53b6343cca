package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/errors"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/models"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/storage"
	"github.com/talentnet/backend/internal/util"
	"go.uber.org/zap"
)

// UploadAvatar stores a new profile picture from the "avatar" form field
// POST /api/users/upload/avatar
func (h *Handlers) UploadAvatar(c *gin.Context) {
	h.uploadProfileMedia(c, storage.KindAvatar, "avatar", "avatar uploaded", "profile_picture_url",
		func(u *models.User, url string) { u.ProfilePictureURL = url })
}

// UploadResume stores a resume from the "resume" form field
// POST /api/users/upload/resume
func (h *Handlers) UploadResume(c *gin.Context) {
	h.uploadProfileMedia(c, storage.KindResume, "resume", "resume uploaded", "resume_url",
		func(u *models.User, url string) { u.ResumeURL = url })
}

// UploadCover stores a profile cover photo from the "cover" form field
// POST /api/users/upload/cover
func (h *Handlers) UploadCover(c *gin.Context) {
	h.uploadProfileMedia(c, storage.KindCover, "cover", "cover photo uploaded", "cover_photo_url",
		func(u *models.User, url string) { u.CoverPhotoURL = url })
}

func (h *Handlers) uploadProfileMedia(c *gin.Context, kind storage.Kind, field, message, urlKey string, apply func(*models.User, string)) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, ok := h.storeUpload(c, kind, field, userID, true)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.GetUser(ctx, userID)
	if stderrors.Is(err, repository.ErrUserNotFound) {
		util.RespondNotFound(c, "user")
		return
	}
	if err != nil {
		util.RespondError(c, err)
		return
	}

	apply(user, result.URL)
	if err := h.users.UpdateUser(ctx, user); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		urlKey:    result.URL,
	})
}

// storeUpload reads field from the multipart form and hands it to the
// uploader. With required unset, a missing file returns (nil, true).
// On failure it has already responded.
func (h *Handlers) storeUpload(c *gin.Context, kind storage.Kind, field, userID string, required bool) (*storage.UploadResult, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		if !required && stderrors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		util.RespondBadRequest(c, "no file uploaded in field "+field)
		return nil, false
	}
	defer file.Close()

	if h.uploader == nil {
		util.RespondWithAPIError(c, errors.Unavailable("media uploads are not configured"))
		return nil, false
	}

	if err := storage.Validate(kind, header); err != nil {
		h.metrics.MediaUploadsTotal.WithLabelValues(string(kind), "rejected").Inc()
		util.RespondWithAPIError(c, errors.ValidationError(field, err.Error()))
		return nil, false
	}

	result, err := h.uploader.Upload(c.Request.Context(), kind, userID, file, header)
	if err != nil {
		h.metrics.MediaUploadsTotal.WithLabelValues(string(kind), "failed").Inc()
		logger.Log.Error("Media upload failed",
			zap.String("kind", string(kind)),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		util.RespondWithAPIError(c, errors.InternalError("failed to store file"))
		return nil, false
	}

	h.metrics.MediaUploadsTotal.WithLabelValues(string(kind), "stored").Inc()
	logger.Log.Info("Media uploaded",
		zap.String("kind", string(kind)),
		zap.String("user_id", userID),
		zap.String("key", result.Key),
		zap.Int64("size", result.Size),
	)
	return result, true
}
