// Package packager builds the release manifest consumed by the update
// client.
//
// It resolves file specifications from repeated --file flags or a JSON
// config file, stages each binary into the per-app content directory,
// computes checksums, and writes version.yaml. Runs are one-shot and
// fully sequential; concurrent invocations against the same app name
// are not supported (last writer wins).
package packager
