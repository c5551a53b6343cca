package api

import (
	json "github.com/json-iterator/go"
)

// OnlineUsers lists every identified connection
func (c *Client) OnlineUsers() ([]OnlineEntry, error) {
	var result struct {
		Users []OnlineEntry `json:"users"`
	}
	resp, err := c.request().Get("/api/presence/online")
	if err := decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// OnlineStatus reports which of userIDs are online
func (c *Client) OnlineStatus(userIDs []string) (map[string]bool, error) {
	reqBody, err := json.Marshal(map[string][]string{"user_ids": userIDs})
	if err != nil {
		return nil, err
	}

	var result struct {
		Statuses map[string]bool `json:"statuses"`
	}
	resp, err := c.request().SetBody(reqBody).Post("/api/presence/status")
	if err := decode(resp, err, &result); err != nil {
		return nil, err
	}
	return result.Statuses, nil
}
