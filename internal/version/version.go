// Package version holds build information, set with -ldflags "-X".
package version

var (
	// Version of the build.
	Version = "dev" //nolint:gochecknoglobals

	// Commit the build was made from.
	Commit = "none" //nolint:gochecknoglobals
)
