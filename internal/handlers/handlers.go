// Package handlers implements the REST API: account management, talent
// profiles, the follow graph, media uploads and the post feed.
package handlers

import (
	"github.com/talentnet/backend/internal/auth"
	"github.com/talentnet/backend/internal/metrics"
	"github.com/talentnet/backend/internal/repository"
	"github.com/talentnet/backend/internal/storage"
)

// PresenceReader answers whether a user currently has a live connection
type PresenceReader interface {
	IsOnline(userID string) bool
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth     *auth.Service
	users    repository.UserRepository
	follows  repository.FollowRepository
	posts    repository.PostRepository
	uploader storage.MediaUploader
	presence PresenceReader
	metrics  *metrics.Metrics
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service, users repository.UserRepository) *Handlers {
	return &Handlers{
		auth:    authService,
		users:   users,
		metrics: metrics.Get(),
	}
}

// SetSocial sets the stores behind follows and posts
func (h *Handlers) SetSocial(follows repository.FollowRepository, posts repository.PostRepository) {
	h.follows = follows
	h.posts = posts
}

// SetUploader sets where media uploads are stored. Without one, upload
// endpoints answer 503.
func (h *Handlers) SetUploader(uploader storage.MediaUploader) {
	h.uploader = uploader
}

// SetPresence sets the source of online flags on profiles
func (h *Handlers) SetPresence(presence PresenceReader) {
	h.presence = presence
}

func (h *Handlers) isOnline(userID string) bool {
	return h.presence != nil && h.presence.IsOnline(userID)
}
