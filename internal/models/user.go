package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a profile can declare
var Roles = []string{
	"Actor",
	"Model",
	"Filmmaker",
	"Director",
	"Writer",
	"Photographer",
	"Editor",
	"Musician",
	"Creator",
	"Student",
	"Production House",
}

// DefaultProfilePictureURL is used until a user uploads an avatar
const DefaultProfilePictureURL = "https://placehold.co/150x150/1a202c/ffffff?text=Avatar"

// MaxBioLength caps the profile bio
const MaxBioLength = 500

// IsValidRole reports whether role is one of Roles
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a talent network profile
type User struct {
	ID                string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FullName          string    `gorm:"not null" json:"full_name"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string    `gorm:"not null" json:"-"`
	Role              string    `gorm:"not null;index" json:"role"`
	Bio               string    `gorm:"type:text" json:"bio"`
	Location          string    `json:"location"`
	Skills            []string  `gorm:"type:text;serializer:json" json:"skills"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	ResumeURL         string    `json:"resume_url"`
	CoverPhotoURL     string    `json:"cover_photo_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id and normalizes the email
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.ProfilePictureURL == "" {
		u.ProfilePictureURL = DefaultProfilePictureURL
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PublicProfile is the view of a user returned to other users
type PublicProfile struct {
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
}

// ToPublicProfile strips private fields from u
func (u *User) ToPublicProfile(online bool) PublicProfile {
	return PublicProfile{
		ID:                u.ID,
		FullName:          u.FullName,
		Role:              u.Role,
		Bio:               u.Bio,
		Location:          u.Location,
		Skills:            u.Skills,
		ProfilePictureURL: u.ProfilePictureURL,
		ResumeURL:         u.ResumeURL,
		CoverPhotoURL:     u.CoverPhotoURL,
		Online:            online,
	}
}
