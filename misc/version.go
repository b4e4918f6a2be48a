// Package misc provides program identity derived from build information.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "stylegen"

var buildInfo = sync.OnceValue(func() *debug.BuildInfo {
	if bi, ok := debug.ReadBuildInfo(); ok {
		return bi
	}
	return &debug.BuildInfo{}
})

// GetAppName returns program name.
func GetAppName() string {
	return appName
}

// GetVersion returns main module version or "dev" for local builds.
func GetVersion() string {
	if v := buildInfo().Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}

// GetGitHash returns VCS revision recorded at build time.
func GetGitHash() string {
	var rev, dirty string
	for _, s := range buildInfo().Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev + dirty
}
