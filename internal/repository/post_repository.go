package repository

import (
	"context"
	"errors"

	"github.com/talentnet/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// PostListParams filters a feed listing. An empty AuthorID lists every post.
type PostListParams struct {
	AuthorID string
	Limit    int
	Offset   int
}

// DefaultFeedLimit caps results when PostListParams.Limit is unset
const DefaultFeedLimit = 20

// ReactionCount is how many users reacted to a post with one emoji
type ReactionCount struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// PostRepository handles all database operations for posts and their engagement
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	ListPosts(ctx context.Context, params PostListParams) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, postID string) error

	// ToggleLike likes the post, or removes the like if userID already liked it.
	// It returns whether the post is now liked and the new like count.
	ToggleLike(ctx context.Context, postID, userID string) (bool, int, error)
	HasLiked(ctx context.Context, postID, userID string) (bool, error)

	AddComment(ctx context.Context, comment *models.PostComment) error
	GetComment(ctx context.Context, postID, commentID string) (*models.PostComment, error)
	ListComments(ctx context.Context, postID string) ([]models.PostComment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error

	// SetReaction records userID's emoji on a post. Reacting again with the
	// same emoji removes it; a different emoji replaces the old one. It
	// returns the emoji now held by the user, empty when removed.
	SetReaction(ctx context.Context, postID, userID, emoji string) (string, error)
	ReactionSummary(ctx context.Context, postID string) ([]ReactionCount, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.UserID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns posts newest first
func (r *postRepository) ListPosts(ctx context.Context, params PostListParams) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{})
	if params.AuthorID != "" {
		query = query.Where("user_id = ?", params.AuthorID)
	}

	limit := params.Limit
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultFeedLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	var posts []models.Post
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// UpdatePost saves the editable fields of post
func (r *postRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.ID == "" {
		return ErrInvalidInput
	}
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":       post.Title,
			"description": post.Description,
			"media_url":   post.MediaURL,
			"media_key":   post.MediaKey,
			"media_type":  post.MediaType,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost removes a post with its likes, comments and reactions
func (r *postRepository) DeletePost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.PostLike{}, &models.PostComment{}, &models.PostReaction{}} {
			if err := tx.Where("post_id = ?", postID).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", postID).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	var liked bool
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("id = ?", postID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		removed := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if removed.Error != nil {
			return removed.Error
		}

		delta := "like_count - 1"
		if removed.RowsAffected == 0 {
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			delta = "like_count + 1"
			liked = true
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr(delta)).Error; err != nil {
			return err
		}
		if err := tx.Select("like_count").Where("id = ?", postID).First(&post).Error; err != nil {
			return err
		}
		count = post.LikeCount
		return nil
	})
	return liked, count, err
}

func (r *postRepository) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	return n > 0, err
}

// AddComment stores a comment and bumps the post's comment count
func (r *postRepository) AddComment(ctx context.Context, comment *models.PostComment) error {
	if comment == nil || comment.PostID == "" || comment.UserID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Create(comment).Error
	})
}

func (r *postRepository) GetComment(ctx context.Context, postID, commentID string) (*models.PostComment, error) {
	var comment models.PostComment
	err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns a post's comments oldest first
func (r *postRepository) ListComments(ctx context.Context, postID string) ([]models.PostComment, error) {
	var comments []models.PostComment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *postRepository) DeleteComment(ctx context.Context, postID, commentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND post_id = ?", commentID, postID).Delete(&models.PostComment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCommentNotFound
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}

func (r *postRepository) SetReaction(ctx context.Context, postID, userID, emoji string) (string, error) {
	if emoji == "" {
		return "", ErrInvalidInput
	}
	var current string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrPostNotFound
		}

		var existing models.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			current = emoji
			return tx.Create(&models.PostReaction{PostID: postID, UserID: userID, Emoji: emoji}).Error
		case err != nil:
			return err
		case existing.Emoji == emoji:
			return tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostReaction{}).Error
		default:
			current = emoji
			return tx.Model(&models.PostReaction{}).
				Where("post_id = ? AND user_id = ?", postID, userID).
				Update("emoji", emoji).Error
		}
	})
	return current, err
}

// ReactionSummary counts reactions on a post per emoji, most used first
func (r *postRepository) ReactionSummary(ctx context.Context, postID string) ([]ReactionCount, error) {
	var counts []ReactionCount
	err := r.db.WithContext(ctx).
		Model(&models.PostReaction{}).
		Select("emoji, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("emoji").
		Order("count DESC, emoji ASC").
		Scan(&counts).Error
	return counts, err
}
