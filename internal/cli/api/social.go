package api

import (
	"fmt"
	"net/url"
)

// FollowResult is returned by follow and unfollow
type FollowResult struct {
	Message        string `json:"message"`
	FollowersCount int64  `json:"followers_count"`
}

// Follow starts following userID
func (c *Client) Follow(userID string) (*FollowResult, error) {
	var result FollowResult
	resp, err := c.request().Post("/api/users/" + url.PathEscape(userID) + "/follow")
	if err := decode(resp, err, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Unfollow stops following userID
func (c *Client) Unfollow(userID string) (*FollowResult, error) {
	var result FollowResult
	resp, err := c.request().Delete("/api/users/" + url.PathEscape(userID) + "/follow")
	if err := decode(resp, err, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Followers lists who follows userID
func (c *Client) Followers(userID string) ([]Profile, error) {
	return c.profileList("/api/users/" + url.PathEscape(userID) + "/followers")
}

// Following lists who userID follows
func (c *Client) Following(userID string) ([]Profile, error) {
	return c.profileList("/api/users/" + url.PathEscape(userID) + "/following")
}

func (c *Client) profileList(path string) ([]Profile, error) {
	var result struct {
		Users []Profile `json:"users"`
	}
	resp, err := c.request().Get(path)
	if err := decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// uploadFields maps an upload kind to its form field and response key
var uploadFields = map[string]string{
	"avatar": "profile_picture_url",
	"resume": "resume_url",
	"cover":  "cover_photo_url",
}

// UploadKinds lists the profile media that can be uploaded
func UploadKinds() []string {
	return []string{"avatar", "resume", "cover"}
}

// Upload sends a local file as the caller's avatar, resume or cover photo
// and returns its public URL
func (c *Client) Upload(kind, path string) (string, error) {
	urlKey, ok := uploadFields[kind]
	if !ok {
		return "", fmt.Errorf("unknown upload kind %q", kind)
	}

	var result map[string]string
	resp, err := c.http.R().
		SetFile(kind, path).
		Post("/api/users/upload/" + kind)
	if err := decode(resp, err, &result); err != nil {
		return "", err
	}
	return result[urlKey], nil
}
