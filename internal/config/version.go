package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Stamped by docker/Dockerfile through -ldflags -X.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo identifies the running dashboard binary. It is served by
// /api/version, the get_version MCP tool and the -version flag.
type BuildInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// CurrentBuild returns the stamped build, filling unstamped fields from the
// module and VCS data the toolchain embeds (go install, go build in a checkout).
func CurrentBuild() BuildInfo {
	bi, _ := debug.ReadBuildInfo()
	return resolveBuild(Version, Build, GitCommit, bi)
}

func resolveBuild(version, build, commit string, bi *debug.BuildInfo) BuildInfo {
	info := BuildInfo{
		Version:   version,
		Build:     build,
		GitCommit: commit,
		GoVersion: runtime.Version(),
	}
	if bi == nil {
		return info
	}
	if bi.GoVersion != "" {
		info.GoVersion = bi.GoVersion
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.Build == "unknown" {
				info.Build = s.Value
			}
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String renders the build for the -version flag and startup log.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s, %s)", b.Version, b.Build, b.GitCommit, b.GoVersion)
}
