package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("bogus"))
}

func TestInitializeWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "server.log")

	require.NoError(t, Initialize("warn", file))
	assert.NotNil(t, Log)
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Core().Enabled(zapcore.ErrorLevel))
	_ = Close()
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, "conn_id", WithConnID("c1").Key)
	assert.Equal(t, "user_id", WithUserID("u1").Key)
	assert.Equal(t, int64(404), WithStatus(404).Integer)
}
