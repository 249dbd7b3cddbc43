package build

// Set at link time:
//
//	go build -ldflags "-X github.com/rohmanhakim/paper-review/internal/build.Version=1.2.0 ..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// Banner is the one-line version report of the binary name.
func Banner(name string) string {
	return name + " " + FullVersion() + " (built " + BuildTime + ")"
}
