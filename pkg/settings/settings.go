// Package settings provides build metadata, per-run options, and context helpers
// shared by the templay CLI and its packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "templay"

// Environment variables consulted by the CLI.
const (
	EnvConfigPath = "TEMPLAY_CONFIG"
	EnvNoColor    = "NO_COLOR"
)

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the options of a single CLI invocation.
type Run struct {
	// MinLogLevel is a zapcore level: -1 debug, 0 info, 1 warn, 2 error.
	MinLogLevel int8
	// LogFormat is "console" or "json".
	LogFormat  string
	ConfigPath string
	NoColor    bool
}

// NewCliParams returns the defaults used before flags are parsed.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 1,
		LogFormat:   "console",
		ConfigPath:  "",
		NoColor:     false,
	}
}
