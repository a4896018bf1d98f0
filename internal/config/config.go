package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Config holds process-wide settings shared by the packager services.
// It is built once at startup and treated as immutable afterwards.
type Config struct {
	// AppsDir is the root directory holding per-application content stores.
	AppsDir string
	// BaseURL is the external base URL under which staged files are served.
	BaseURL string
	// RestartCmd is the release-level restart command used when the
	// input config file does not carry one.
	RestartCmd string
}

const (
	// EnvAppsDir overrides the apps directory location.
	EnvAppsDir = "APPS_DIR"

	// EnvBaseURL overrides the base URL for download links.
	EnvBaseURL = "BASE_URL"

	// EnvRestartCmd provides the fallback release restart command.
	EnvRestartCmd = "RESTART_CMD"

	// DefaultAppsDir is used when APPS_DIR is not set.
	DefaultAppsDir = "apps"

	// DefaultBaseURL is used when BASE_URL is not set.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultDirPermissions is the mode for created content directories.
	DefaultDirPermissions os.FileMode = 0o755
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAppsDirRequired is returned when the apps directory is empty.
	errAppsDirRequired = errors.New("apps directory must be provided")
	// errBaseURLRequired is returned when the base URL is empty.
	errBaseURLRequired = errors.New("base URL must be provided")
)

// FromEnv builds the configuration from the environment, applying
// defaults, validating the result, and eagerly creating the apps
// directory so later staging steps only deal with per-app paths.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppsDir:    envOrDefault(EnvAppsDir, DefaultAppsDir),
		BaseURL:    envOrDefault(EnvBaseURL, DefaultBaseURL),
		RestartCmd: os.Getenv(EnvRestartCmd),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Clean(cfg.AppsDir), DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create apps directory: %w", err)
	}

	return cfg, nil
}

// Validate checks the provided configuration for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.AppsDir == "" {
		return errAppsDirRequired
	}

	if cfg.BaseURL == "" {
		return errBaseURLRequired
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	return nil
}

// envOrDefault returns the trimmed environment value or the fallback when unset.
func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	return fallback
}
