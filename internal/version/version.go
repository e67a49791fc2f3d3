package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const devVersion = "0.1.0-dev"

// Overridable with -ldflags "-X github.com/sudovim/sudovim/internal/version.Version=..."
var (
	AppName   = "sudovim"
	Version   = devVersion
	Revision  = "HEAD"
	BuildDate = "unknown"
)

// applyBuildInfo fills in whatever ldflags left at its placeholder from the
// module version and VCS stamps.
func applyBuildInfo(mainVersion string, settings map[string]string) {
	if Version == devVersion && mainVersion != "" && mainVersion != "(devel)" {
		Version = strings.TrimPrefix(mainVersion, "v")
	}

	if r := settings["vcs.revision"]; Revision == "HEAD" && r != "" {
		if len(r) > 12 {
			r = r[:12]
		}
		if settings["vcs.modified"] == "true" {
			r += "-dirty"
		}
		Revision = r
	}

	if t := settings["vcs.time"]; BuildDate == "unknown" && t != "" {
		BuildDate = t
	}
}

// Detailed returns `0.1.0 (5e23a4; go1.23.6; linux/amd64; 2026-01-01T00:00:00Z)`.
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s; %s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH, BuildDate)
}

func DetailedWithApp() string {
	return AppName + " " + Detailed()
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	applyBuildInfo(info.Main.Version, settings)
}
