package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/errors"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/models"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/storage"
	"github.com/talentnet/backend/internal/util"
	"go.uber.org/zap"
)

// CreatePostRequest is the body of POST /api/posts, sent as JSON or as a
// multipart form with an optional "file" attachment
type CreatePostRequest struct {
	Title       string `json:"title" form:"title" binding:"required,max=150"`
	Description string `json:"description" form:"description" binding:"max=5000"`
}

// UpdatePostRequest is the body of PUT /api/posts/:id. Absent fields are left unchanged.
type UpdatePostRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=150"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

// CommentRequest is the body of POST /api/posts/:id/comment
type CommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// ReactRequest is the body of POST /api/posts/:id/react
type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}

// PostView is a post as returned to clients
type PostView struct {
	models.Post
	Author *models.PublicProfile `json:"author,omitempty"`
	Liked  bool                  `json:"liked"`
}

// PostDetail adds comments and reaction counts to a PostView
type PostDetail struct {
	PostView
	Comments  []models.PostComment       `json:"comments"`
	Reactions []repository.ReactionCount `json:"reactions"`
}

// ListPosts returns the feed, newest first
// GET /api/posts?limit=&offset=&author=
func (h *Handlers) ListPosts(c *gin.Context) {
	h.listPosts(c, c.Query("author"))
}

// ListUserPosts returns one user's posts, newest first
// GET /api/users/:id/posts
func (h *Handlers) ListUserPosts(c *gin.Context) {
	if !h.requireUser(c, c.Param("id")) {
		return
	}
	h.listPosts(c, c.Param("id"))
}

func (h *Handlers) listPosts(c *gin.Context, authorID string) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(repository.DefaultFeedLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ctx := c.Request.Context()
	posts, err := h.posts.ListPosts(ctx, repository.PostListParams{
		AuthorID: authorID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}

	authors := make(map[string]*models.PublicProfile)
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		view, err := h.postView(ctx, &posts[i], viewerID, authors)
		if err != nil {
			util.RespondError(c, err)
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": views,
		"count": len(views),
	})
}

// CreatePost publishes a post, optionally with a photo or video
// POST /api/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if !bindForm(c, &req) {
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		util.RespondValidationError(c, "title", "title is required")
		return
	}

	post := &models.Post{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		result, ok := h.storeUpload(c, storage.KindPostMedia, "file", userID, false)
		if !ok {
			return
		}
		if result != nil {
			post.MediaURL = result.URL
			post.MediaKey = result.Key
			post.MediaType = storage.MediaType(result.Key)
		}
	}

	ctx := c.Request.Context()
	if err := h.posts.CreatePost(ctx, post); err != nil {
		h.discardMedia(ctx, post.MediaKey)
		util.RespondError(c, err)
		return
	}

	logger.Log.Info("Post created", zap.String("post_id", post.ID), zap.String("user_id", userID))
	view, err := h.postView(ctx, post, userID, nil)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetPost returns a post with its comments and reactions
// GET /api/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	view, err := h.postView(ctx, post, viewerID, nil)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	comments, err := h.posts.ListComments(ctx, post.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	reactions, err := h.posts.ReactionSummary(ctx, post.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PostDetail{
		PostView:  view,
		Comments:  comments,
		Reactions: reactions,
	})
}

// UpdatePost edits the title or description of the caller's own post
// PUT /api/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, ok := h.loadOwnedPost(c, userID)
	if !ok {
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			util.RespondValidationError(c, "title", "title cannot be blank")
			return
		}
		post.Title = title
	}
	if req.Description != nil {
		post.Description = strings.TrimSpace(*req.Description)
	}

	if err := h.posts.UpdatePost(c.Request.Context(), post); err != nil {
		h.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost removes the caller's own post and its attachment
// DELETE /api/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	post, ok := h.loadOwnedPost(c, userID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.posts.DeletePost(ctx, post.ID); err != nil {
		h.respondPostError(c, err)
		return
	}
	h.discardMedia(ctx, post.MediaKey)

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// ToggleLike likes the post, or removes the caller's like
// PUT /api/posts/:id/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	liked, count, err := h.posts.ToggleLike(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"liked":      liked,
		"like_count": count,
	})
}

// AddComment comments on a post
// POST /api/posts/:id/comment
func (h *Handlers) AddComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		util.RespondValidationError(c, "text", "text is required")
		return
	}

	comment := &models.PostComment{PostID: c.Param("id"), UserID: userID, Text: text}
	if err := h.posts.AddComment(c.Request.Context(), comment); err != nil {
		h.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment. The comment's author and the post's
// owner may delete it.
// DELETE /api/posts/:id/comment/:commentId
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	post, ok := h.loadPost(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	comment, err := h.posts.GetComment(ctx, post.ID, c.Param("commentId"))
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	if comment.UserID != userID && post.UserID != userID {
		util.RespondWithAPIError(c, errors.Forbidden("you cannot delete this comment"))
		return
	}

	if err := h.posts.DeleteComment(ctx, post.ID, comment.ID); err != nil {
		h.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

// ReactToPost sets, switches or clears the caller's emoji on a post
// POST /api/posts/:id/react
func (h *Handlers) ReactToPost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	var req ReactRequest
	if !bindJSON(c, &req) {
		return
	}
	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		util.RespondValidationError(c, "emoji", "emoji is required")
		return
	}

	ctx := c.Request.Context()
	postID := c.Param("id")
	current, err := h.posts.SetReaction(ctx, postID, userID, emoji)
	if err != nil {
		h.respondPostError(c, err)
		return
	}
	reactions, err := h.posts.ReactionSummary(ctx, postID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"emoji":     current,
		"reactions": reactions,
	})
}

func (h *Handlers) loadPost(c *gin.Context) (*models.Post, bool) {
	post, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondPostError(c, err)
		return nil, false
	}
	return post, true
}

func (h *Handlers) loadOwnedPost(c *gin.Context, userID string) (*models.Post, bool) {
	post, ok := h.loadPost(c)
	if !ok {
		return nil, false
	}
	if post.UserID != userID {
		util.RespondWithAPIError(c, errors.Forbidden("you can only change your own posts"))
		return nil, false
	}
	return post, true
}

func (h *Handlers) respondPostError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, repository.ErrPostNotFound):
		util.RespondNotFound(c, "post")
	case stderrors.Is(err, repository.ErrCommentNotFound):
		util.RespondNotFound(c, "comment")
	case stderrors.Is(err, repository.ErrInvalidInput):
		util.RespondBadRequest(c, "invalid input")
	default:
		util.RespondError(c, err)
	}
}

// postView attaches the author's profile and the viewer's like. authors
// caches profiles across one listing and may be nil.
func (h *Handlers) postView(ctx context.Context, post *models.Post, viewerID string, authors map[string]*models.PublicProfile) (PostView, error) {
	view := PostView{Post: *post}

	author, cached := authors[post.UserID]
	if !cached {
		user, err := h.users.GetUser(ctx, post.UserID)
		switch {
		case err == nil:
			profile := user.ToPublicProfile(h.isOnline(user.ID))
			author = &profile
		case !stderrors.Is(err, repository.ErrUserNotFound):
			return view, err
		}
		if authors != nil {
			authors[post.UserID] = author
		}
	}
	view.Author = author

	liked, err := h.posts.HasLiked(ctx, post.ID, viewerID)
	if err != nil {
		return view, err
	}
	view.Liked = liked
	return view, nil
}

// discardMedia deletes an attachment that no post references any more
func (h *Handlers) discardMedia(ctx context.Context, key string) {
	if key == "" || h.uploader == nil {
		return
	}
	if err := h.uploader.Delete(ctx, key); err != nil {
		logger.Log.Warn("Failed to delete post media", zap.String("key", key), zap.Error(err))
	}
}
