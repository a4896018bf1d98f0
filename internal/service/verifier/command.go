package verifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	"github.com/ota-kit/ota-packager/internal/config"
	"github.com/ota-kit/ota-packager/internal/logger"
	"github.com/ota-kit/ota-packager/internal/manifest"
)

// Options contains inputs for the verifier entry point.
type Options struct {
	// AppName is the application whose staged release is checked.
	AppName string
}

var (
	errAppNameRequired    = errors.New("app name is required: use --app or provide it as the first argument")
	errVerificationFailed = errors.New("verification failed")
)

// Run re-checks a previously published release: it parses the app's
// version.yaml and compares every staged file's digest against the
// manifest. It never downloads or modifies anything.
func Run(ctx context.Context, cfg *config.Config, opts *Options) error {
	ctx = logger.WithName(ctx, "ota-verify")

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if opts.AppName == "" {
		return errAppNameRequired
	}

	appDir := filepath.Join(cfg.AppsDir, opts.AppName)

	m, err := manifest.Load(filepath.Join(appDir, manifest.Filename))
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Verifying staged release",
		"app", opts.AppName, "version", m.Version, "files", len(m.Files))

	failures := 0

	for _, entry := range m.Files {
		baseName, err := stagedBaseName(entry.URL)
		if err != nil {
			logger.ErrorKV(ctx, "Unparseable file URL", "name", entry.Name, "url", entry.URL)

			failures++

			continue
		}

		stagedPath := filepath.Join(appDir, "files", baseName)

		checksum, err := manifest.Checksum(stagedPath)
		if err != nil {
			logger.ErrorKV(ctx, "Staged file unreadable",
				"name", entry.Name, "path", stagedPath, "error", err)

			failures++

			continue
		}

		if checksum != entry.SHA256 {
			logger.ErrorKV(ctx, "Checksum mismatch",
				"name", entry.Name, "path", stagedPath,
				"expected", entry.SHA256, "actual", checksum)

			failures++

			continue
		}

		logger.InfoKV(ctx, "Checksum verified", "name", entry.Name)
	}

	if failures > 0 {
		return fmt.Errorf("%w: %d of %d files", errVerificationFailed, failures, len(m.Files))
	}

	logger.InfoKV(ctx, "All files verified", "files", len(m.Files), "version", m.Version)

	return nil
}

// stagedBaseName extracts the staged file name from a manifest URL.
func stagedBaseName(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return "", fmt.Errorf("no file name in URL %q", rawURL)
	}

	return base, nil
}
