package api

import (
	"net/url"
	"strconv"
)

// GetProfile fetches a user's public profile
func (c *Client) GetProfile(userID string) (*Profile, error) {
	var profile Profile
	resp, err := c.request().Get("/api/users/" + url.PathEscape(userID))
	if err := decode(resp, err, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SearchParams filters a user search. Empty fields are not sent.
type SearchParams struct {
	Query    string
	Role     string
	Location string
	Limit    int
}

// SearchUsers finds profiles by text, role or location
func (c *Client) SearchUsers(params SearchParams) ([]Profile, error) {
	req := c.request()
	if params.Query != "" {
		req.SetQueryParam("q", params.Query)
	}
	if params.Role != "" {
		req.SetQueryParam("role", params.Role)
	}
	if params.Location != "" {
		req.SetQueryParam("location", params.Location)
	}
	if params.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(params.Limit))
	}

	var result struct {
		Users []Profile `json:"users"`
	}
	resp, err := req.Get("/api/users/search")
	if err := decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}
