package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is an item in the network's feed
type Post struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	Title             string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Attachment
	MediaURL  string `json:"media_url,omitempty"`
	MediaKey  string `json:"-"`
	MediaType string `json:"media_type,omitempty"` // Photo or Video

	// Engagement counters
	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostLike is one user's like on a post
type PostLike struct {
	PostID    string    `gorm:"primaryKey;type:varchar(36)" json:"post_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36);index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostComment is a comment on a post
type PostComment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"not null;index;type:varchar(36)" json:"post_id"`
	UserID    string    `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns an id
func (c *PostComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// PostReaction is one user's emoji on a post; a user holds at most one
type PostReaction struct {
	PostID    string    `gorm:"primaryKey;type:varchar(36)" json:"post_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36);index" json:"user_id"`
	Emoji     string    `gorm:"not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}
