package api

import "time"

// User is the caller's own account
type User struct {
	ID                string    `json:"id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Bio               string    `json:"bio"`
	Location          string    `json:"location"`
	Skills            []string  `json:"skills"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	ResumeURL         string    `json:"resume_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// Profile is another user's public view
type Profile struct {
	ID                string   `json:"id"`
	FullName          string   `json:"full_name"`
	Role              string   `json:"role"`
	Bio               string   `json:"bio"`
	Location          string   `json:"location"`
	Skills            []string `json:"skills"`
	ProfilePictureURL string   `json:"profile_picture_url"`
	ResumeURL         string   `json:"resume_url"`
	CoverPhotoURL     string   `json:"cover_photo_url"`
	Online            bool     `json:"online"`
	FollowersCount    int64    `json:"followers_count"`
	FollowingCount    int64    `json:"following_count"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MeResponse is returned by GET /api/auth/me
type MeResponse struct {
	User   User `json:"user"`
	Online bool `json:"online"`
}

// OnlineEntry is one live user in the presence set
type OnlineEntry struct {
	UserID       string `json:"user_id"`
	ConnectionID string `json:"connection_id"`
}
