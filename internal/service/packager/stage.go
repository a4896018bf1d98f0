package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ota-kit/ota-packager/internal/logger"
	"github.com/ota-kit/ota-packager/internal/manifest"
)

const (
	// filesSubdir is the per-app directory holding staged binaries.
	filesSubdir = "files"

	// stagedFileMode makes staged binaries executable for the client.
	stagedFileMode os.FileMode = 0o755

	// defaultTargetDir is where files install when no target is given.
	defaultTargetDir = "/usr/local/bin"
)

// stageFile copies one source file into the app content directory,
// fixes its permissions, hashes the staged copy, and returns the
// manifest entry describing it. The checksum is computed over the
// copy so it reflects exactly what will be served.
func (p *packager) stageFile(ctx context.Context, spec FileSpec) (manifest.FileEntry, error) {
	srcInfo, err := os.Stat(spec.Path)
	if err != nil {
		return manifest.FileEntry{}, fmt.Errorf("binary file not found: %s: %w", spec.Path, err)
	}

	filesDir := filepath.Join(p.cfg.AppsDir, p.appName, filesSubdir)
	if err = os.MkdirAll(filesDir, stagedFileMode); err != nil {
		return manifest.FileEntry{}, fmt.Errorf("create files directory: %w", err)
	}

	logger.InfoKV(ctx, "Staging binary", "source", spec.Path, "dir", filesDir)

	baseName := filepath.Base(spec.Path)
	destPath := filepath.Join(filesDir, baseName)

	if err = copyFile(spec.Path, destPath, srcInfo); err != nil {
		return manifest.FileEntry{}, fmt.Errorf("copy %s: %w", spec.Path, err)
	}

	if runtime.GOOS != "windows" {
		if err = os.Chmod(destPath, stagedFileMode); err != nil {
			return manifest.FileEntry{}, fmt.Errorf("chmod %s: %w", destPath, err)
		}
	}

	checksum, err := manifest.Checksum(destPath)
	if err != nil {
		return manifest.FileEntry{}, err
	}

	name := spec.Name
	if name == "" {
		name = baseName
	}

	target := spec.Target
	if target == "" {
		target = defaultTargetDir + "/" + name
		logger.Infof(ctx, "No target specified for %s, using default: %s", name, target)
	}

	return manifest.FileEntry{
		Name:    name,
		URL:     fmt.Sprintf("%s/ota/%s/%s/%s", p.cfg.BaseURL, p.appName, filesSubdir, baseName),
		SHA256:  checksum,
		Target:  target,
		Version: p.version,
	}, nil
}

// copyFile copies source bytes to destPath, overwriting any previous
// staged file of the same name and preserving the source modification
// time.
func copyFile(srcPath, destPath string, srcInfo os.FileInfo) error {
	src, err := os.Open(filepath.Clean(srcPath))
	if err != nil {
		return err
	}

	defer func() {
		_ = src.Close()
	}()

	dest, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return err
	}

	if _, err = io.Copy(dest, src); err != nil {
		_ = dest.Close()
		return err
	}

	if err = dest.Close(); err != nil {
		return err
	}

	return os.Chtimes(destPath, srcInfo.ModTime(), srcInfo.ModTime())
}
