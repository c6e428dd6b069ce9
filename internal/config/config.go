// Package config loads groqscribe settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "GROQSCRIBE"
	envFileVar = "GROQSCRIBE_ENV_FILE"
	appDirName = "groqscribe"

	DefaultAPIURL           = "http://localhost:8000"
	DefaultCredentialHeader = "X-Groq-API-Key"
	DefaultRequestTimeout   = 5 * time.Minute
	DefaultModel            = "llama-3.1-8b-instant"
	DefaultPrompt           = "Analyze the lyrics in depth, focusing on meaning and emotional content."
	DefaultLogLevel         = "info"
)

// Config holds the runtime settings for the client and the MCP server.
type Config struct {
	APIURL           string        `mapstructure:"api_url" validate:"required,url"`
	CredentialHeader string        `mapstructure:"credential_header" validate:"required"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	StorePath        string        `mapstructure:"store_path" validate:"required"`
	DefaultModel     string        `mapstructure:"default_model" validate:"required"`
	DefaultPrompt    string        `mapstructure:"default_prompt"`
	LogLevel         string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	LogFile          string        `mapstructure:"log_file" validate:"required"`
}

// Load reads the optional env file, then resolves every key from the
// environment with defaults applied.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	// The web client read API_URL; keep honoring it when the prefixed key is absent.
	if _, ok := os.LookupEnv(envPrefix + "_API_URL"); !ok {
		if legacy := strings.TrimSpace(os.Getenv("API_URL")); legacy != "" {
			v.Set("api_url", legacy)
		}
	}

	cfg := &Config{
		APIURL:           strings.TrimRight(v.GetString("api_url"), "/"),
		CredentialHeader: v.GetString("credential_header"),
		RequestTimeout:   v.GetDuration("request_timeout"),
		StorePath:        v.GetString("store_path"),
		DefaultModel:     v.GetString("default_model"),
		DefaultPrompt:    v.GetString("default_prompt"),
		LogLevel:         strings.ToLower(v.GetString("log_level")),
		LogFile:          v.GetString("log_file"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the struct tags on Config.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", e.Field(), e.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("credential_header", DefaultCredentialHeader)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("store_path", DefaultStorePath())
	v.SetDefault("default_model", DefaultModel)
	v.SetDefault("default_prompt", DefaultPrompt)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile())
}

// loadEnvFile loads GROQSCRIBE_ENV_FILE, or ./.env when unset. A missing
// default file is fine; a missing explicit file is not.
func loadEnvFile() error {
	path := strings.TrimSpace(os.Getenv(envFileVar))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// DefaultStorePath returns the per-user credential database path.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appDirName, "session.sqlite")
}

// DefaultLogFile returns the per-user log file path.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appDirName, "groqscribe.log")
}
