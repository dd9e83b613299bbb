// Package version carries build metadata injected with -ldflags.
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// String renders "VERSION (COMMIT, BUILDDATE)".
func String() string {
	return Version + " (" + Commit + ", " + BuildDate + ")"
}
