package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentnet/backend/internal/cli/config"
)

func setup(t *testing.T) {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
}

func TestLoadMissing(t *testing.T) {
	setup(t)

	creds, err := Load()
	require.NoError(t, err)
	assert.Nil(t, creds)

	_, err = Require()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSaveLoadDelete(t *testing.T) {
	setup(t)

	want := &Credentials{
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		UserID:    "u1",
		FullName:  "Alice Smith",
		Email:     "alice@example.com",
		Role:      "Actor",
	}
	require.NoError(t, Save(want))

	info, err := os.Stat(config.GetCredentialsPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := Require()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, Delete())
	require.NoError(t, Delete(), "deleting twice is fine")

	got, err = Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExpiredCredentials(t *testing.T) {
	setup(t)
	require.NoError(t, Save(&Credentials{Token: "tok", ExpiresAt: time.Now().Add(-time.Minute)}))

	_, err := Require()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
