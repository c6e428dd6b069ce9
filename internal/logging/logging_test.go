package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	logger, closer, err := New(Options{Level: "debug", File: path, Service: "groqscribe"})
	require.NoError(t, err)

	gw := Component(logger, "gateway")
	gw.Debug().Str("path", "/models").Msg("request")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "groqscribe", entry["service"])
	assert.Equal(t, "gateway", entry[FieldComponent])
	assert.Equal(t, "/models", entry["path"])
	assert.Equal(t, "request", entry["message"])
}

func TestNewFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, closer, err := New(Options{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	logger, closer, err := New(Options{Level: "chatty", File: path})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "info", logger.GetLevel().String())
}
