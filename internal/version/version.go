// Package version reports the build identity of the kiln binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/kiln/internal/version.Version=v1.0.0".
var Version = "unknown"

// Build metadata, also set through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info is the resolved build identity.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
}

// Get fills unset ldflags values from the module build info when available.
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "unknown" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// String renders the identity on one line.
func (i Info) String() string {
	s := fmt.Sprintf("kiln %s (commit %s, built %s", i.Version, i.GitCommit, i.BuildTime)
	if i.GoVersion != "" {
		s += ", " + i.GoVersion
	}
	return s + ")"
}
