package version

// Version is the pipeline version reported by --version.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/tufyaa/yahoo-talib/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// GetVersion returns the current version of the pipeline.
func GetVersion() string {
	return Version
}
