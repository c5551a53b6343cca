package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/errors"
	"github.com/talentnet/backend/internal/models"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/util"
)

// allRolesFilter is what the web client sends when no role filter is chosen
const allRolesFilter = "All Roles"

// UpdateProfileRequest is the body of PUT /api/users/me. Absent fields are
// left unchanged.
type UpdateProfileRequest struct {
	FullName          *string   `json:"full_name" binding:"omitempty,min=1,max=100"`
	Bio               *string   `json:"bio"`
	Location          *string   `json:"location" binding:"omitempty,max=100"`
	Skills            *[]string `json:"skills"`
	ProfilePictureURL *string   `json:"profile_picture_url" binding:"omitempty,url"`
	ResumeURL         *string   `json:"resume_url" binding:"omitempty,url"`
	CoverPhotoURL     *string   `json:"cover_photo_url" binding:"omitempty,url"`
}

// profileResponse is a public profile with its follow counts
type profileResponse struct {
	models.PublicProfile
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// GetUserProfile returns a user's public profile and whether they are online
func (h *Handlers) GetUserProfile(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if stderrors.Is(err, repository.ErrUserNotFound) {
		util.RespondNotFound(c, "user")
		return
	}
	if err != nil {
		util.RespondError(c, err)
		return
	}

	resp := profileResponse{PublicProfile: user.ToPublicProfile(h.isOnline(user.ID))}
	if h.follows != nil {
		ctx := c.Request.Context()
		if resp.FollowersCount, err = h.follows.CountFollowers(ctx, user.ID); err != nil {
			util.RespondError(c, err)
			return
		}
		if resp.FollowingCount, err = h.follows.CountFollowing(ctx, user.ID); err != nil {
			util.RespondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SearchUsers finds users by name or role text, exact role, or location
func (h *Handlers) SearchUsers(c *gin.Context) {
	params := repository.SearchParams{
		Query:    strings.TrimSpace(c.Query("q")),
		Role:     c.Query("role"),
		Location: strings.TrimSpace(c.Query("location")),
	}
	if params.Role == allRolesFilter {
		params.Role = ""
	}
	if params.Query == "" && params.Role == "" && params.Location == "" {
		util.RespondBadRequest(c, "search query or filters are required")
		return
	}
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if params.Offset < 0 {
		params.Offset = 0
	}

	users, err := h.users.SearchUsers(c.Request.Context(), params)
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

// UpdateMyProfile edits the caller's bio, skills, location, name and links
func (h *Handlers) UpdateMyProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > models.MaxBioLength {
		util.RespondWithAPIError(c, errors.ValidationError("bio", "bio must be at most "+strconv.Itoa(models.MaxBioLength)+" characters"))
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

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			util.RespondValidationError(c, "full_name", "full_name cannot be blank")
			return
		}
		user.FullName = name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}
	if req.Skills != nil {
		user.Skills = cleanSkills(*req.Skills)
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = *req.ProfilePictureURL
	}
	if req.ResumeURL != nil {
		user.ResumeURL = *req.ResumeURL
	}
	if req.CoverPhotoURL != nil {
		user.CoverPhotoURL = *req.CoverPhotoURL
	}

	if err := h.users.UpdateUser(ctx, user); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "profile_updated",
		"user":    user,
	})
}

// cleanSkills trims entries and drops blanks and case-insensitive duplicates
func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
