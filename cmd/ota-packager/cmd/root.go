package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ota-kit/ota-packager/internal/config"
	"github.com/ota-kit/ota-packager/internal/logger"
	"github.com/ota-kit/ota-packager/internal/service/packager"
	"github.com/ota-kit/ota-packager/internal/service/verifier"
	"github.com/ota-kit/ota-packager/internal/version"
)

var (
	// appName and releaseVersion are the named counterparts of the two
	// positional arguments; named flags win when both are given.
	appName        string
	releaseVersion string

	// fileSpecs holds repeated --file records (path[:name[:target[:restart]]]).
	fileSpecs []string

	// configPath points at an optional JSON config describing the files.
	configPath string

	// logLevel controls log verbosity for all commands.
	logLevel string

	// rootCmd builds a release manifest from the provided binaries.
	rootCmd = &cobra.Command{
		Use:   "ota-packager [app-name] [version]",
		Short: "Stage release binaries and publish an OTA update manifest",
		Long: "Stage built binaries into the per-app content directory, compute " +
			"their checksums, and write the version.yaml manifest consumed by the " +
			"update client. Configuration comes from APPS_DIR, BASE_URL and " +
			"RESTART_CMD environment variables.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			options := &packager.Options{
				AppName:    firstNonEmpty(appName, positionalArg(args, 0)),
				Version:    firstNonEmpty(releaseVersion, positionalArg(args, 1)),
				FileSpecs:  fileSpecs,
				ConfigPath: configPath,
			}

			if err = packager.Run(ctx, cfg, options); err != nil {
				logger.ErrorKV(ctx, "Version update failed", "error", err)
				return err
			}

			return nil
		},
	}

	// verifyCmd re-checks a staged release against its manifest.
	verifyCmd = &cobra.Command{
		Use:   "verify [app-name]",
		Short: "Verify staged files against the published manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			applyLogLevel()

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			options := &verifier.Options{
				AppName: firstNonEmpty(appName, positionalArg(args, 0)),
			}

			if err = verifier.Run(ctx, cfg, options); err != nil {
				logger.ErrorKV(ctx, "Verification failed", "error", err)
				return err
			}

			return nil
		},
	}
)

// Execute runs the ota-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&appName, "app", "a", "", "application name")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error, fatal)")
	rootCmd.Flags().StringVarP(&releaseVersion, "version", "v", "", "release version (for example: 1.0.0)")
	rootCmd.Flags().StringArrayVarP(&fileSpecs, "file", "f",
		nil, "file spec: path[:name[:target[:restart]]] (repeatable)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to JSON config describing the files")

	rootCmd.AddCommand(verifyCmd)
}

// applyLogLevel applies the --log-level flag to the global logger.
func applyLogLevel() {
	if lvl, ok := logger.ParseLogLevel(logLevel); ok {
		logger.SetLevel(lvl)
	}
}

// positionalArg returns args[i] or an empty string when absent.
func positionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}

	return ""
}

// firstNonEmpty returns the first non-empty string of the pair.
func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}
