// Package config resolves process-wide settings for the packager from
// the environment: the apps content directory, the external base URL,
// and the fallback restart command. The resulting struct is immutable
// after startup and passed explicitly into the services that need it.
package config
