package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexTLDR/invitations/internal/config"
)

func TestNew_LevelFallback(t *testing.T) {
	logger, closer := New(&config.Config{LogLevel: "loud"})
	defer closer.Close()

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closer := New(&config.Config{LogLevel: "warn", LogFile: path})
	logger.Warn().Str("slug", "year-end-party").Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"slug":"year-end-party"`)
	assert.Contains(t, string(data), `"level":"warn"`)
}
