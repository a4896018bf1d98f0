package packager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSpec describes one input artifact before staging.
type FileSpec struct {
	// Path is the source file on disk. Mandatory.
	Path string `json:"path"`
	// Name is the logical artifact name; defaults to the base name of Path.
	Name string `json:"name"`
	// Target is the absolute install path on the client; empty means
	// the default /usr/local/bin/<name> is substituted at staging.
	Target string `json:"target"`
	// Restart is accepted in flag mode for forward compatibility with
	// per-file restart semantics. It is not carried into the manifest.
	Restart bool `json:"-"`
}

// specFile is the JSON config document accepted in config mode.
// RestartCmd is a pointer so an explicitly empty value can be told
// apart from an absent key.
type specFile struct {
	Files      *[]FileSpec `json:"files"`
	RestartCmd *string     `json:"restart_cmd"`
}

var (
	errEmptySpecPath      = errors.New("file spec must start with a path")
	errFilesArrayRequired = errors.New("invalid config file format: files array is required")
	errNoFilesResolved    = errors.New("at least one file is required: use --file or --config")
)

// parseFileSpec parses one colon-delimited flag record of the form
// path[:name[:target[:restart]]].
func parseFileSpec(raw string) (FileSpec, error) {
	parts := strings.Split(raw, ":")
	if parts[0] == "" {
		return FileSpec{}, fmt.Errorf("%w: %q", errEmptySpecPath, raw)
	}

	spec := FileSpec{
		Path: parts[0],
		Name: filepath.Base(parts[0]),
	}

	if len(parts) > 1 && parts[1] != "" {
		spec.Name = parts[1]
	}

	if len(parts) > 2 {
		spec.Target = parts[2]
	}

	if len(parts) > 3 {
		spec.Restart = parts[3] == "true" || parts[3] == "1"
	}

	return spec, nil
}

// loadSpecFile reads the JSON config document and returns the file
// specs plus the release restart command, which stays nil when the
// key is absent.
func loadSpecFile(path string) ([]FileSpec, *string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("read config file: %w", err)
	}

	var doc specFile
	if err := json.Unmarshal(contents, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse config file: %w", err)
	}

	if doc.Files == nil {
		return nil, nil, errFilesArrayRequired
	}

	specs := *doc.Files
	for i, spec := range specs {
		if spec.Path != "" {
			continue
		}

		name := spec.Name
		if name == "" {
			name = "unknown"
		}

		return nil, nil, fmt.Errorf("file path is required for file %q (entry %d)", name, i)
	}

	return specs, doc.RestartCmd, nil
}

// resolveSpecs produces the ordered FileSpec list from the mutually
// exclusive input sources, along with the config-level restart command
// when config mode was used. An empty result is a hard error.
func resolveSpecs(configPath string, rawSpecs []string) ([]FileSpec, *string, error) {
	if configPath != "" {
		specs, restartCmd, err := loadSpecFile(configPath)
		if err != nil {
			return nil, nil, err
		}

		if len(specs) == 0 {
			return nil, nil, errNoFilesResolved
		}

		return specs, restartCmd, nil
	}

	if len(rawSpecs) == 0 {
		return nil, nil, errNoFilesResolved
	}

	specs := make([]FileSpec, 0, len(rawSpecs))

	for _, raw := range rawSpecs {
		spec, err := parseFileSpec(raw)
		if err != nil {
			return nil, nil, err
		}

		specs = append(specs, spec)
	}

	return specs, nil, nil
}
