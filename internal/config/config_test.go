package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_URL",
		"GROQSCRIBE_ENV_FILE",
		"GROQSCRIBE_API_URL",
		"GROQSCRIBE_CREDENTIAL_HEADER",
		"GROQSCRIBE_REQUEST_TIMEOUT",
		"GROQSCRIBE_STORE_PATH",
		"GROQSCRIBE_DEFAULT_MODEL",
		"GROQSCRIBE_DEFAULT_PROMPT",
		"GROQSCRIBE_LOG_LEVEL",
		"GROQSCRIBE_LOG_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultCredentialHeader, cfg.CredentialHeader)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultModel, cfg.DefaultModel)
	assert.Equal(t, DefaultPrompt, cfg.DefaultPrompt)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultStorePath(), cfg.StorePath)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQSCRIBE_API_URL", "https://backend.example.com/")
	t.Setenv("GROQSCRIBE_REQUEST_TIMEOUT", "30s")
	t.Setenv("GROQSCRIBE_LOG_LEVEL", "DEBUG")
	t.Setenv("GROQSCRIBE_CREDENTIAL_HEADER", "X-Test-API-Key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://backend.example.com", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "X-Test-API-Key", cfg.CredentialHeader)
}

func TestLoadLegacyAPIURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_URL", "http://10.0.0.5:8000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.APIURL)
}

func TestLoadPrefixedURLWinsOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_URL", "http://legacy:8000")
	t.Setenv("GROQSCRIBE_API_URL", "http://preferred:8000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://preferred:8000", cfg.APIURL)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "groqscribe.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GROQSCRIBE_DEFAULT_MODEL=gemma2-9b-it\n"), 0o600))
	t.Setenv("GROQSCRIBE_ENV_FILE", envFile)
	t.Cleanup(func() { os.Unsetenv("GROQSCRIBE_DEFAULT_MODEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemma2-9b-it", cfg.DefaultModel)
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQSCRIBE_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQSCRIBE_API_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIURL")
}

func TestValidateLogLevel(t *testing.T) {
	cfg := &Config{
		APIURL:           DefaultAPIURL,
		CredentialHeader: DefaultCredentialHeader,
		RequestTimeout:   time.Second,
		StorePath:        "x.sqlite",
		DefaultModel:     DefaultModel,
		LogLevel:         "loud",
		LogFile:          "x.log",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")

	cfg.LogLevel = "warn"
	assert.NoError(t, cfg.Validate())
}
