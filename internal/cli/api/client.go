// Package api is the talentctl HTTP client for the REST endpoints.
package api

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/talentnet/backend/internal/cli/config"
	"github.com/talentnet/backend/internal/cli/logger"
)

const userAgent = "talentctl/0.1.0"

// Client wraps a resty client bound to one server
type Client struct {
	http *resty.Client
}

// New creates a client for baseURL
func New(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", userAgent)

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "elapsed", resp.Time())
		return nil
	})

	return &Client{http: httpClient}
}

// FromConfig creates a client from api.base_url and api.timeout
func FromConfig() *Client {
	return New(
		config.GetString("api.base_url"),
		time.Duration(config.GetInt("api.timeout"))*time.Second,
	)
}

// SetAuthToken sets the bearer token sent with every request
func (c *Client) SetAuthToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) request() *resty.Request {
	return c.http.R().SetHeader("Content-Type", "application/json")
}
