package api

import (
	json "github.com/json-iterator/go"
	"github.com/talentnet/backend/internal/cli/logger"
)

// Login authenticates user with email and password
func (c *Client) Login(email, password string) (*AuthResponse, error) {
	logger.Debug("Attempting login", "email", email)

	reqBody, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	resp, err := c.request().SetBody(reqBody).Post("/api/auth/login")
	if err := decode(resp, err, &authResp); err != nil {
		return nil, err
	}

	logger.Debug("Login successful", "user_id", authResp.User.ID)
	return &authResp, nil
}

// Register creates an account and returns its first token
func (c *Client) Register(req RegisterRequest) (*AuthResponse, error) {
	logger.Debug("Registering account", "email", req.Email, "role", req.Role)

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	resp, err := c.request().SetBody(reqBody).Post("/api/auth/register")
	if err := decode(resp, err, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// Me gets the current authenticated user
func (c *Client) Me() (*MeResponse, error) {
	var me MeResponse
	resp, err := c.request().Get("/api/auth/me")
	if err := decode(resp, err, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
