package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ota-kit/ota-packager/internal/config"
	"github.com/ota-kit/ota-packager/internal/logger"
	"github.com/ota-kit/ota-packager/internal/manifest"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// AppName is the application whose release is being published.
	AppName string
	// Version is the release version string.
	Version string
	// FileSpecs are raw colon-delimited --file records.
	FileSpecs []string
	// ConfigPath is an optional JSON config file describing the files;
	// it is mutually exclusive with FileSpecs and wins when set.
	ConfigPath string
}

// manifestFileMode is the mode for the written manifest document.
const manifestFileMode os.FileMode = 0o644

var (
	errAppNameRequired = errors.New("app name is required: use --app or provide it as the first argument")
	errVersionRequired = errors.New("version is required: use --version or provide it as the second argument")
)

// packager stages release files and assembles the manifest.
// It is unexported—callers should use Run, which encapsulates setup
// and validation.
type packager struct {
	// cfg holds the immutable process configuration.
	cfg *config.Config
	// appName and version identify the release being published.
	appName string
	version string
	// specs is the ordered input file list.
	specs []FileSpec
	// restartCmd is the resolved release-level restart command.
	restartCmd string
	// entries accumulates manifest entries in input order.
	entries []manifest.FileEntry
}

// Run executes the packaging workflow.
func Run(ctx context.Context, cfg *config.Config, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "ota-packager")

	pkg, err := newPackager(cfg, opts)
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	if err = pkg.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Version update completed successfully")

	return nil
}

// newPackager validates the inputs, resolves file specs, and decides
// the restart command. A restart_cmd key present in the config file
// wins over the environment fallback even when its value is empty.
func newPackager(cfg *config.Config, opts *Options) (*packager, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if opts.AppName == "" {
		return nil, errAppNameRequired
	}

	if opts.Version == "" {
		return nil, errVersionRequired
	}

	specs, configRestartCmd, err := resolveSpecs(opts.ConfigPath, opts.FileSpecs)
	if err != nil {
		return nil, err
	}

	restartCmd := cfg.RestartCmd
	if configRestartCmd != nil {
		restartCmd = *configRestartCmd
	}

	return &packager{
		cfg:        cfg,
		appName:    opts.AppName,
		version:    opts.Version,
		specs:      specs,
		restartCmd: restartCmd,
		entries:    make([]manifest.FileEntry, 0, len(specs)),
	}, nil
}

// Run stages every file in input order, writes the manifest, and logs
// a human-readable summary.
func (p *packager) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Starting version update",
		"app", p.appName,
		"version", p.version,
		"files", len(p.specs),
		"apps_dir", p.cfg.AppsDir,
		"base_url", p.cfg.BaseURL)

	for _, spec := range p.specs {
		entry, err := p.stageFile(ctx, spec)
		if err != nil {
			return err
		}

		p.entries = append(p.entries, entry)
	}

	manifestPath, err := p.writeManifest()
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Manifest updated", "path", manifestPath)
	p.printSummary(ctx)

	return nil
}

// writeManifest renders and writes version.yaml for the app, fully
// replacing any previous manifest.
func (p *packager) writeManifest() (string, error) {
	doc := manifest.Render(&manifest.ReleaseManifest{
		Version:    p.version,
		Files:      p.entries,
		RestartCmd: p.restartCmd,
	})

	appDir := filepath.Join(p.cfg.AppsDir, p.appName)
	if err := os.MkdirAll(appDir, config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create app directory: %w", err)
	}

	manifestPath := filepath.Join(appDir, manifest.Filename)
	if err := os.WriteFile(manifestPath, doc, manifestFileMode); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return manifestPath, nil
}

// printSummary logs the release contents and where clients can fetch
// the manifest.
func (p *packager) printSummary(ctx context.Context) {
	var builder strings.Builder

	builder.WriteString("Release summary:\n")
	builder.WriteString("  app:     " + p.appName + "\n")
	builder.WriteString("  version: " + p.version + "\n")
	builder.WriteString("  files:   " + strconv.Itoa(len(p.entries)) + "\n")

	for _, entry := range p.entries {
		builder.WriteString("    - " + entry.Name + ": " + entry.URL + " -> " + entry.Target + "\n")
	}

	if p.restartCmd != "" {
		builder.WriteString("  restart command: " + p.restartCmd + "\n")
	}

	builder.WriteString("Manifest available at " + p.manifestURL())

	logger.Info(ctx, builder.String())
}

// manifestURL is the externally reachable location of the manifest.
func (p *packager) manifestURL() string {
	return fmt.Sprintf("%s/ota/%s/%s", p.cfg.BaseURL, p.appName, manifest.Filename)
}
