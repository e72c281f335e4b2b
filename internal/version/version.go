// Package version reports the canplot build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/canplot/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/canplot/internal/version.Commit=abc123"
//
// Otherwise they come from the VCS stamp in the build info, falling back to
// "dev" with a timestamp.
var (
	Version = ""
	Commit  = ""
)

// BuildInfo is the version summary reported by the API and the CLI
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func init() {
	if Version == "" || Commit == "" {
		settings := map[string]string{}
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				settings[s.Key] = s.Value
			}
		}
		fromVCS(settings)
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromVCS fills Version and Commit from vcs.* build settings
func fromVCS(settings map[string]string) {
	if rev := settings["vcs.revision"]; Commit == "" && rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		if settings["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Commit = rev
	}

	// Build info carries no tags, so a dev version is derived from the commit time
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Info returns the build summary
func Info() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
