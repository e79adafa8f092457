package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/gw1000/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/gw1000/internal/version.Commit=abc1234"
//
// Unset values are taken from the VCS stamp in the build info.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

var (
	resolved Info
	once     sync.Once
)

// Get returns the build information, resolving it on first use
func Get() Info {
	once.Do(func() {
		resolved = resolve(Version, Commit, readSettings())
	})
	return resolved
}

// Full returns "version (commit: hash)"
func Full() string {
	info := Get()
	return fmt.Sprintf("%s (commit: %s)", info.Version, info.Commit)
}

func readSettings() map[string]string {
	settings := make(map[string]string)
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}
	}
	return settings
}

// resolve fills missing ldflags values from vcs.* build settings
func resolve(version, commit string, vcs map[string]string) Info {
	if commit == "" {
		if rev := vcs["vcs.revision"]; rev != "" {
			commit = rev[:min(len(rev), 7)]
			if vcs["vcs.modified"] == "true" {
				commit += "-dirty"
			}
		}
	}
	if commit == "" {
		commit = "unknown"
	}

	if version == "" {
		version = "dev"
		// vcs.time is RFC 3339; the date prefix is enough
		if t := vcs["vcs.time"]; len(t) >= 10 {
			version = "dev-" + t[:4] + t[5:7] + t[8:10]
		}
	}

	return Info{Version: version, Commit: commit, GoVersion: runtime.Version()}
}
