// Package credentials stores the session token between talentctl runs.
package credentials

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/talentnet/backend/internal/cli/config"
)

// ErrNotLoggedIn is returned when no usable token is stored
var ErrNotLoggedIn = errors.New("not logged in, run `talentctl login` first")

type Credentials struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// Load loads credentials from disk. Missing credentials are not an error.
func Load() (*Credentials, error) {
	data, err := os.ReadFile(config.GetCredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Require loads credentials and fails unless they are still valid
func Require() (*Credentials, error) {
	creds, err := Load()
	if err != nil {
		return nil, err
	}
	if creds == nil || !creds.IsValid() {
		return nil, ErrNotLoggedIn
	}
	return creds, nil
}

// Save saves credentials to disk
func Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	// owner read/write only
	return os.WriteFile(config.GetCredentialsPath(), data, 0600)
}

// Delete deletes credentials from disk
func Delete() error {
	err := os.Remove(config.GetCredentialsPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsExpired checks if the token is expired
func (c *Credentials) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are valid
func (c *Credentials) IsValid() bool {
	return c.Token != "" && !c.IsExpired()
}
