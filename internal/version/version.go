// Package version exposes build-time version information.
package version

// Version is the application version, overridable at build time with
// -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "dev"
