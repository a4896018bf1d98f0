package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileEntry describes one staged artifact inside a release manifest.
// The yaml tags mirror the schema expected by the update client.
type FileEntry struct {
	// Name is the logical name of the artifact.
	Name string `yaml:"name"`
	// URL is the download location of the staged file.
	URL string `yaml:"url"`
	// SHA256 is the lowercase hex digest of the staged file bytes.
	SHA256 string `yaml:"sha256"`
	// Target is the absolute install path on the client.
	Target string `yaml:"target"`
	// Version is the file version; it defaults to the release version
	// and is rendered only when the two differ.
	Version string `yaml:"version"`
}

// ReleaseManifest is the document written to version.yaml and fetched
// by update clients.
type ReleaseManifest struct {
	// Version is the release version.
	Version string `yaml:"version"`
	// Files lists staged artifacts in install order.
	Files []FileEntry `yaml:"files"`
	// RestartCmd is an optional command the client runs after applying
	// all files.
	RestartCmd string `yaml:"restart_cmd"`
}

const (
	// Filename is the manifest name written under each app directory.
	Filename = "version.yaml"

	// checksumChunkSize is the read size used when hashing staged files.
	checksumChunkSize = 4096
)

var errEmptyManifest = errors.New("manifest contains no files")

// Render serializes the manifest into its line-oriented text form.
//
// The shape is part of the contract with the update client and is
// reproduced byte for byte: version and file fields are double-quoted,
// a per-file version line appears only when it differs from the
// release version, and restart_cmd is single-quoted and emitted only
// when non-empty. Output for identical input is identical.
func Render(m *ReleaseManifest) []byte {
	var b strings.Builder

	b.WriteString(`version: "` + m.Version + `"` + "\n")
	b.WriteString("files:\n")

	for _, f := range m.Files {
		b.WriteString(`  - name: "` + f.Name + `"` + "\n")
		b.WriteString(`    url: "` + f.URL + `"` + "\n")
		b.WriteString(`    sha256: "` + f.SHA256 + `"` + "\n")
		b.WriteString(`    target: "` + f.Target + `"` + "\n")

		if f.Version != "" && f.Version != m.Version {
			b.WriteString(`    version: "` + f.Version + `"` + "\n")
		}
	}

	if m.RestartCmd != "" {
		b.WriteString("restart_cmd: '" + m.RestartCmd + "'\n")
	}

	return []byte(b.String())
}

// Parse decodes a manifest document previously written by Render.
func Parse(contents []byte) (*ReleaseManifest, error) {
	var m ReleaseManifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if len(m.Files) == 0 {
		return nil, errEmptyManifest
	}

	return &m, nil
}

// Load reads and parses the manifest at the provided path.
func Load(path string) (*ReleaseManifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return Parse(contents)
}

// Checksum returns the lowercase hex SHA-256 digest of the file at
// path, streamed in fixed-size chunks.
func Checksum(path string) (string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	chunk := make([]byte, checksumChunkSize)

	for {
		n, err := file.Read(chunk)
		if n > 0 {
			// Hash writes never fail.
			_, _ = hasher.Write(chunk[:n])
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("read for checksum: %w", err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
