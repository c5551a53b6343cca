package prompter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withInput(t *testing.T, s string) {
	t.Helper()
	prev := Input
	Input = strings.NewReader(s)
	t.Cleanup(func() { Input = prev })
}

func TestPromptString(t *testing.T) {
	withInput(t, "  alice@example.com \n")
	got, err := PromptString("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)

	withInput(t, "no newline")
	got, err = PromptString("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)

	withInput(t, "")
	_, err = PromptString("Email: ")
	assert.Error(t, err)
}

func TestPromptSelect(t *testing.T) {
	options := []string{"Actor", "Director"}

	withInput(t, "2\n")
	got, err := PromptSelect("Role:", options)
	require.NoError(t, err)
	assert.Equal(t, "Director", got)

	for _, bad := range []string{"0\n", "3\n", "x\n"} {
		withInput(t, bad)
		_, err := PromptSelect("Role:", options)
		assert.Error(t, err, bad)
	}
}
