package verifier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ota-kit/ota-packager/internal/config"
	"github.com/ota-kit/ota-packager/internal/service/packager"
)

// publishRelease stages one file through the packager and returns the
// config plus the staged file path.
func publishRelease(t *testing.T) (*config.Config, string) {
	t.Helper()

	cfg := &config.Config{
		AppsDir: t.TempDir(),
		BaseURL: "http://localhost:3000",
	}

	src := filepath.Join(t.TempDir(), "agent")
	require.NoError(t, os.WriteFile(src, []byte("agent binary"), 0o600))

	opts := &packager.Options{
		AppName:   "agent",
		Version:   "1.0.0",
		FileSpecs: []string{src + ":agent:/opt/agent/bin/agent"},
	}

	require.NoError(t, packager.Run(context.Background(), cfg, opts))

	return cfg, filepath.Join(cfg.AppsDir, "agent", "files", "agent")
}

// TestRun_VerifiesPublishedRelease checks a clean pass over packager output.
func TestRun_VerifiesPublishedRelease(t *testing.T) {
	t.Parallel()

	cfg, _ := publishRelease(t)

	err := Run(context.Background(), cfg, &Options{AppName: "agent"})
	require.NoError(t, err)
}

// TestRun_DetectsCorruption fails when a staged file changed after publishing.
func TestRun_DetectsCorruption(t *testing.T) {
	t.Parallel()

	cfg, staged := publishRelease(t)
	require.NoError(t, os.WriteFile(staged, []byte("tampered"), 0o755))

	err := Run(context.Background(), cfg, &Options{AppName: "agent"})
	require.ErrorIs(t, err, errVerificationFailed)
}

// TestRun_DetectsMissingStagedFile fails when a staged file is gone.
func TestRun_DetectsMissingStagedFile(t *testing.T) {
	t.Parallel()

	cfg, staged := publishRelease(t)
	require.NoError(t, os.Remove(staged))

	err := Run(context.Background(), cfg, &Options{AppName: "agent"})
	require.ErrorIs(t, err, errVerificationFailed)
}

// TestRun_InputValidation covers usage and missing-manifest errors.
func TestRun_InputValidation(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{AppsDir: t.TempDir(), BaseURL: "http://localhost:3000"}
	ctx := context.Background()

	err := Run(ctx, cfg, &Options{})
	require.ErrorIs(t, err, errAppNameRequired)

	// No manifest published for the app.
	err = Run(ctx, cfg, &Options{AppName: "nothing"})
	require.Error(t, err)
}
