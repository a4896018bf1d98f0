package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	err := Validate(nil)
	require.Error(t, err)

	// Missing apps directory.
	err = Validate(&Config{BaseURL: DefaultBaseURL})
	require.Error(t, err)

	// Missing base URL.
	err = Validate(&Config{AppsDir: "apps"})
	require.Error(t, err)

	// Malformed base URL.
	err = Validate(&Config{AppsDir: "apps", BaseURL: "not a url"})
	require.Error(t, err)

	// Okay.
	err = Validate(&Config{AppsDir: "apps", BaseURL: "https://updates.local"})
	require.NoError(t, err)
}

// TestFromEnvDefaults ensures defaults apply when the environment is empty.
func TestFromEnvDefaults(t *testing.T) {
	dir := t.TempDir()

	t.Chdir(dir)
	t.Setenv(EnvAppsDir, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvRestartCmd, "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, DefaultAppsDir, cfg.AppsDir)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Empty(t, cfg.RestartCmd)

	// The apps directory is created eagerly.
	info, err := os.Stat(filepath.Join(dir, DefaultAppsDir))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

// TestFromEnvOverrides ensures environment values win over defaults.
func TestFromEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	appsDir := filepath.Join(dir, "content")

	t.Setenv(EnvAppsDir, appsDir)
	t.Setenv(EnvBaseURL, "https://ota.example.com")
	t.Setenv(EnvRestartCmd, "systemctl restart myapp")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, appsDir, cfg.AppsDir)
	require.Equal(t, "https://ota.example.com", cfg.BaseURL)
	require.Equal(t, "systemctl restart myapp", cfg.RestartCmd)

	_, err = os.Stat(appsDir)
	require.NoError(t, err)
}

// TestFromEnvRejectsBadBaseURL ensures a malformed BASE_URL fails startup.
func TestFromEnvRejectsBadBaseURL(t *testing.T) {
	t.Setenv(EnvAppsDir, t.TempDir())
	t.Setenv(EnvBaseURL, "::: nope")

	_, err := FromEnv()
	require.Error(t, err)
}
