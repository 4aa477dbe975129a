package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")

	logger := Init("debug", "json", path)
	logger.Info().Str("location", "Tokyo").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"location":"Tokyo"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	Init("loud", "console", filepath.Join(t.TempDir(), "x.log"))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
