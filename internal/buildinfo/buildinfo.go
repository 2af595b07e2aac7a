// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Project metadata shown in the About entry and used by the update check.
var (
	Maintainer  = "lmstray contributors"
	Repository  = "https://github.com/lmstudio-tray/lmstray"
	ReleasesAPI = "https://api.github.com/repos/lmstudio-tray/lmstray/releases/latest"
)
