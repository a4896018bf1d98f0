// Package verifier re-checks a staged release against its written
// manifest, recomputing checksums for every staged file. It is the
// read-only counterpart of the packager and catches content drift
// between publishing and serving.
package verifier
