// Package manifest defines the release manifest document shared with
// the update client: the data model, the exact text rendering written
// to version.yaml, parsing of previously written manifests, and the
// file checksum helper both sides of the pipeline rely on.
package manifest
